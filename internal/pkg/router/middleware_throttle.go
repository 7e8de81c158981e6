package router

import (
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
)

// ThrottleConfig bounds how many requests a single client IP can make per second.
type ThrottleConfig struct {
	RequestsPerSecond float64
	Burst             int
	// TTL is how long an idle IP bucket is remembered.
	TTL time.Duration
}

// Throttle rejects bursts from one client IP with 429 before the handler runs.
// It complements the per-phone OTP window: that guards an SMS recipient,
// this guards the API from a single noisy caller.
func Throttle(cfg ThrottleConfig) Middleware {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	lmt := tollbooth.NewLimiter(cfg.RequestsPerSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: ttl})
	lmt.SetIPLookups([]string{"RemoteAddr"})
	if cfg.Burst > 0 {
		lmt.SetBurst(cfg.Burst)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpErr := tollbooth.LimitByRequest(lmt, w, r); httpErr != nil {
				writeJSON(w, errorResponse{Message: "Too many requests, please slow down"}, httpErr.StatusCode)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

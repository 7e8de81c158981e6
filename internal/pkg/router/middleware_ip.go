package router

import (
	"net"
	"net/http"
	"strings"
)

// middlewareIP rewrites RemoteAddr to the bare client IP so the throttle keys
// on the caller. Proxy headers are honoured only when trustProxy is set;
// otherwise any client could pick its own bucket.
func middlewareIP(trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := clientIP(r, trustProxy); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := forwardedIP(r.Header); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if net.ParseIP(host) == nil {
		return ""
	}
	return host
}

func forwardedIP(h http.Header) string {
	candidates := []string{h.Get("True-Client-IP"), h.Get("X-Real-IP")}
	if xff, _, _ := strings.Cut(h.Get("X-Forwarded-For"), ","); xff != "" {
		candidates = append(candidates, xff)
	}

	for _, c := range candidates {
		if c = strings.TrimSpace(c); net.ParseIP(c) != nil {
			return c
		}
	}
	return ""
}

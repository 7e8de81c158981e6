package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/smsauth/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in
// app.maintenance.endpoints. An entry is either a route pattern
// ("/send-sms") or a method and pattern ("POST /api/data/create").
func middlewareMaintenance(cfg config.Config) Middleware {
	blocked := make(map[string]struct{})
	if cfg != nil {
		for _, entry := range cfg.GetArray("app.maintenance.endpoints") {
			if entry = strings.Join(strings.Fields(entry), " "); entry != "" {
				if method, path, ok := strings.Cut(entry, " "); ok {
					entry = strings.ToUpper(method) + " " + path
				}
				blocked[entry] = struct{}{}
			}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(blocked) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			_, anyMethod := blocked[route]
			_, exact := blocked[r.Method+" "+route]
			if anyMethod || exact {
				w.Header().Set("Retry-After", "120")
				writeJSON(w, errorResponse{Message: "Service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

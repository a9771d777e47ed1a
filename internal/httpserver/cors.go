package httpserver

import (
	"net/http"
	"strings"

	"github.com/fdg312/meal-planner/internal/config"
)

const (
	corsAllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowHeaders = "Authorization,Content-Type"
	// браузер должен видеть имя файла экспорта и паузу rate limit
	corsExposeHeaders = "Content-Disposition,Retry-After"
	corsMaxAge        = "600"
)

// CORSMiddleware adds CORS headers for allowed origins. A "*" entry allows
// any origin but never together with credentials.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.CORSAllowedOrigins))
	anyOrigin := false
	for _, o := range cfg.CORSAllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			anyOrigin = true
			continue
		}
		allowed[o] = true
	}
	withCredentials := cfg.CORSAllowCredentials && !anyOrigin

	isAllowed := func(origin string) bool {
		return origin != "" && (anyOrigin || allowed[origin])
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		ok := isAllowed(origin)

		if ok {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			if withCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method != http.MethodOptions || origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		// preflight: disallowed origins get a bare 204 and the browser blocks
		if ok {
			h := w.Header()
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

package middleware

import "net/http"

// securityHeaders are set on every response. Run records change with every
// measurement, so nothing is cacheable.
var securityHeaders = [...]struct{ name, value string }{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Cache-Control", "no-store"},
}

// SecurityHeaders sets securityHeaders before the handler runs, so a
// handler may still override them.
func SecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, sh := range securityHeaders {
				h.Set(sh.name, sh.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
)

// MaxBodySize is the default request body limit.
const MaxBodySize = 1 << 20 // 1 MB

// MaxBody limits the body of requests that carry one. A non-positive
// maxSize selects MaxBodySize. Requests whose declared length already
// exceeds the limit are rejected before the handler runs.
func MaxBody(maxSize int64) Middleware {
	if maxSize <= 0 {
		maxSize = MaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				if r.ContentLength > maxSize {
					Error(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}

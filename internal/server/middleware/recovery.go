package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recovery answers a panicking handler with a 500 error envelope. When the
// handler had already started its response the envelope cannot follow, so
// the connection is aborted instead.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &startedWriter{ResponseWriter: w}

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.Error("handler panicked",
					"panic", v,
					"method", r.Method,
					"path", r.URL.Path,
					"response_started", tw.started,
					"stack", string(debug.Stack()),
				)
				if tw.started {
					panic(http.ErrAbortHandler)
				}
				Error(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(tw, r)
		})
	}
}

// startedWriter records whether the response has begun.
type startedWriter struct {
	http.ResponseWriter
	started bool
}

func (sw *startedWriter) WriteHeader(status int) {
	sw.started = true
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *startedWriter) Write(b []byte) (int, error) {
	sw.started = true
	return sw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the connection.
func (sw *startedWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurityHeaders_OnEveryOutcome(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name:    "success",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			status:  http.StatusOK,
		},
		{
			name:    "error envelope",
			handler: func(w http.ResponseWriter, r *http.Request) { Error(w, http.StatusNotFound, "unknown candidate") },
			status:  http.StatusNotFound,
		},
		{
			name:    "recovered panic",
			handler: func(w http.ResponseWriter, r *http.Request) { panic("boom") },
			status:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Chain(tt.handler, Recovery(testLogger()), SecurityHeaders())

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs", nil))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			for _, sh := range securityHeaders {
				if got := w.Header().Get(sh.name); got != sh.value {
					t.Errorf("%s = %q, want %q", sh.name, got, sh.value)
				}
			}
		})
	}
}

func TestSecurityHeaders_HandlerOverride(t *testing.T) {
	handler := SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "private, max-age=60")
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/fib/1.json", nil))

	if got := w.Header().Get("Cache-Control"); got != "private, max-age=60" {
		t.Errorf("Cache-Control = %q, want the handler's value", got)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestRateLimit_Disabled(t *testing.T) {
	config := &RateLimitConfig{
		Enabled: false,
	}

	handler := RateLimit(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Should allow unlimited requests when disabled
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("request %d: expected status 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimit_AllowsBurst(t *testing.T) {
	config := &RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 10,
		Burst:             5,
	}

	handler := RateLimit(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// First 5 requests (burst) should succeed
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("burst request %d: expected status 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimit_RejectsExcessRequests(t *testing.T) {
	config := &RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		Burst:             2,
	}

	handler := RateLimit(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Use all burst tokens
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	// Next request should be rate limited
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", w.Code)
	}
}

func TestRateLimit_RetryAfterAndEnvelope(t *testing.T) {
	config := &RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 0.5,
		Burst:             1,
	}

	handler := RateLimit(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if i == 0 {
			continue
		}
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("expected status 429, got %d", w.Code)
		}
		if got := w.Header().Get("Retry-After"); got != "2" {
			t.Errorf("Retry-After = %q, want %q", got, "2")
		}
		if !contains(w.Body.String(), `"status":"ERROR"`) {
			t.Errorf("expected error envelope, got %s", w.Body.String())
		}
	}
}

func TestRateLimit_PerIPSeparateBuckets(t *testing.T) {
	config := &RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		Burst:             2,
		PerIP:             true,
	}

	handler := RateLimit(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// IP 1: exhaust burst
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	// Same host, different port shares the bucket
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "192.168.1.1:54321"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("IP1 third request: expected status 429, got %d", w.Code)
	}

	// IP 2: separate limiter
	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "192.168.1.2:12345"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("IP2 first request: expected status 200, got %d", w.Code)
	}
}

func TestRateLimit_PerIPXForwardedFor(t *testing.T) {
	config := &RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		Burst:             1,
		PerIP:             true,
	}

	handler := RateLimit(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("first request: expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: expected status 429, got %d", w.Code)
	}
}

func TestRateLimit_PerIPConcurrent(t *testing.T) {
	config := &RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1000,
		Burst:             100,
		PerIP:             true,
	}

	handler := RateLimit(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	successCount := make(chan int, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code == http.StatusOK {
				successCount <- 1
			}
		}()
	}

	wg.Wait()
	close(successCount)

	total := 0
	for range successCount {
		total++
	}

	// With burst of 100, all 50 should succeed
	if total != 50 {
		t.Errorf("expected 50 successful requests, got %d", total)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		expected   string
	}{
		{
			name:       "X-Forwarded-For takes priority",
			xff:        "10.0.0.1",
			xri:        "10.0.0.2",
			remoteAddr: "10.0.0.3:12345",
			expected:   "10.0.0.1",
		},
		{
			name:       "first X-Forwarded-For hop",
			xff:        " 10.0.0.9 , 10.0.0.1",
			remoteAddr: "10.0.0.3:12345",
			expected:   "10.0.0.9",
		},
		{
			name:       "X-Real-IP second priority",
			xri:        "10.0.0.2",
			remoteAddr: "10.0.0.3:12345",
			expected:   "10.0.0.2",
		},
		{
			name:       "RemoteAddr host",
			remoteAddr: "10.0.0.3:12345",
			expected:   "10.0.0.3",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "10.0.0.3",
			expected:   "10.0.0.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}

			ip := clientIP(req)
			if ip != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, ip)
			}
		})
	}
}

func TestPerIPLimiter_EvictsOldestWhenFull(t *testing.T) {
	limiter := newPerIPLimiter(100, 10)

	base := time.Now()
	tick := 0
	limiter.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < maxIPEntries; i++ {
		limiter.getLimiter(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}

	// Touch the first client so the second becomes the oldest
	limiter.getLimiter("10.0.0.0")
	limiter.getLimiter("192.168.1.1")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	if len(limiter.limiters) != maxIPEntries {
		t.Errorf("expected %d limiters, got %d", maxIPEntries, len(limiter.limiters))
	}
	if _, exists := limiter.limiters["10.0.0.1"]; exists {
		t.Error("least recently used limiter should have been evicted")
	}
	if _, exists := limiter.limiters["10.0.0.0"]; !exists {
		t.Error("recently used limiter should have been kept")
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		rps  float64
		want string
	}{
		{10, "1"},
		{1, "1"},
		{0.5, "2"},
		{0.1, "10"},
		{0, "1"},
	}
	for _, tt := range tests {
		if got := retryAfterSeconds(tt.rps); got != tt.want {
			t.Errorf("retryAfterSeconds(%v) = %q, want %q", tt.rps, got, tt.want)
		}
	}
}

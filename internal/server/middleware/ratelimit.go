package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the refill rate of a bucket.
	RequestsPerSecond float64
	// Burst is the bucket size.
	Burst int
	// Enabled controls whether rate limiting is active.
	Enabled bool
	// PerIP keeps one bucket per client address.
	PerIP bool
}

// RateLimit rejects requests with 429 once the token bucket is empty.
// With PerIP every client address gets its own bucket.
func RateLimit(config *RateLimitConfig) Middleware {
	if !config.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiterFor := sharedLimiter(config.RequestsPerSecond, config.Burst)
	if config.PerIP {
		limiterFor = newPerIPLimiter(config.RequestsPerSecond, config.Burst).get
	}
	retryAfter := retryAfterSeconds(config.RequestsPerSecond)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiterFor(r).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				Error(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sharedLimiter(rps float64, burst int) func(*http.Request) *rate.Limiter {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(*http.Request) *rate.Limiter {
		return limiter
	}
}

// maxIPEntries bounds the per-IP table; the least recently seen client is
// evicted first.
const maxIPEntries = 1024

type ipLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// perIPLimiter manages rate limiters per client IP.
type perIPLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiterEntry
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

func newPerIPLimiter(rps float64, burst int) *perIPLimiter {
	return &perIPLimiter{
		limiters: make(map[string]*ipLimiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

func (l *perIPLimiter) get(r *http.Request) *rate.Limiter {
	return l.getLimiter(clientIP(r))
}

func (l *perIPLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.limiters[ip]
	if !exists {
		if len(l.limiters) >= maxIPEntries {
			l.evictOldest()
		}
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastAccess = l.now()
	return entry.limiter
}

// evictOldest drops the least recently used entry. Callers hold l.mu.
func (l *perIPLimiter) evictOldest() {
	var oldestIP string
	var oldest time.Time
	for ip, entry := range l.limiters {
		if oldestIP == "" || entry.lastAccess.Before(oldest) {
			oldestIP = ip
			oldest = entry.lastAccess
		}
	}
	if oldestIP != "" {
		delete(l.limiters, oldestIP)
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func retryAfterSeconds(rps float64) string {
	if rps <= 0 {
		return "1"
	}
	return strconv.Itoa(int(math.Max(1, math.Ceil(1/rps))))
}

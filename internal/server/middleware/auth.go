package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
)

// AuthConfig holds Basic Auth credentials. It is safe for concurrent reads
// and updates.
type AuthConfig struct {
	mu       sync.RWMutex
	Enabled  bool
	User     string
	Password string
}

// Update replaces the credentials.
func (c *AuthConfig) Update(enabled bool, user, password string) {
	c.mu.Lock()
	c.Enabled = enabled
	c.User = user
	c.Password = password
	c.mu.Unlock()
}

func (c *AuthConfig) get() (enabled bool, user, password string) {
	c.mu.RLock()
	enabled = c.Enabled
	user = c.User
	password = c.Password
	c.mu.RUnlock()
	return
}

// Auth requires Basic Auth on every path except excludePaths. A trailing
// "*" makes an exclusion a prefix ("/runs/*" matches "/runs/fib").
func Auth(config *AuthConfig, excludePaths ...string) Middleware {
	exactExcludes := make(map[string]bool)
	var prefixExcludes []string

	for _, path := range excludePaths {
		if strings.HasSuffix(path, "*") {
			prefixExcludes = append(prefixExcludes, strings.TrimSuffix(path, "*"))
		} else {
			exactExcludes[path] = true
		}
	}

	excluded := func(path string) bool {
		if exactExcludes[path] {
			return true
		}
		for _, prefix := range prefixExcludes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			enabled, configUser, configPass := config.get()
			if !enabled || excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			// Constant time comparison to prevent timing attacks
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(configUser)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(configPass)) == 1

			if !userMatch || !passMatch {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="bigo"`)
	Error(w, http.StatusUnauthorized, "unauthorized")
}

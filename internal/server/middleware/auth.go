// Package middleware provides HTTP middleware for API key authentication.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader is the header carrying the client's key.
const APIKeyHeader = "X-API-Key"

// KeyValidator reports whether an API key is accepted.
// This allows the middleware to work with any key store implementation.
type KeyValidator interface {
	ValidKey(key string) bool
}

// StaticKeys is a KeyValidator over a fixed key list. An empty list means
// open access (development mode without configured keys).
type StaticKeys []string

// ValidKey reports whether the key matches one of the configured keys.
// Comparison is constant-time per candidate.
func (s StaticKeys) ValidKey(key string) bool {
	for _, k := range s {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// Open reports whether no keys are configured, so authentication is skipped.
func (s StaticKeys) Open() bool { return len(s) == 0 }

// APIKeyMiddleware creates middleware that validates the X-API-Key header.
// When no keys are configured the middleware passes every request through.
func APIKeyMiddleware(keys StaticKeys) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Development mode: no configured keys, allow access
			if keys.Open() {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(APIKeyHeader))
			if key == "" || !keys.ValidKey(key) {
				w.Header().Set("WWW-Authenticate", "ApiKey")
				http.Error(w, "Invalid or missing API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// APIKeyAuth guards the /api surface with a single shared key carried in
// the named header. Health probes and everything outside /api (notably the
// websocket event stream) stay open. An empty configured key disables the
// guard entirely.
func APIKeyAuth(apiKey, headerName string) func(http.Handler) http.Handler {
	if apiKey == "" {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !guarded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(headerName)
			if provided == "" {
				reject(w, "API key is required.")
				return
			}
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(provided)) != 1 {
				reject(w, "Invalid API key.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func guarded(path string) bool {
	if path == "/health" || path == "/api/health" {
		return false
	}
	return strings.HasPrefix(path, "/api")
}

func reject(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

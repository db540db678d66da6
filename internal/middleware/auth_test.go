package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth("secret-key", "X-API-Key")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	request := func(path, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid key passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, request("/api/links", "secret-key").Code)
	})

	t.Run("missing key is rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request("/api/links", "").Code)
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request("/api/links", "wrong").Code)
	})

	t.Run("health endpoints skip auth", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, request("/health", "").Code)
		assert.Equal(t, http.StatusOK, request("/api/health", "").Code)
	})

	t.Run("non-api routes skip auth", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, request("/ws/events", "").Code)
	})

	t.Run("empty configured key disables the guard", func(t *testing.T) {
		open := APIKeyAuth("", "X-API-Key")(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		)
		req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
		rec := httptest.NewRecorder()
		open.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClientRateLimiter(t *testing.T) {
	limiter := NewClientRateLimiter(100, 10)
	assert.NotNil(t, limiter)
	assert.NotNil(t, limiter.limiters)
	assert.Equal(t, float64(100), limiter.rps)
}

func TestClientRateLimiter_Allow(t *testing.T) {
	t.Run("disabled when rps is non-positive", func(t *testing.T) {
		crl := NewClientRateLimiter(0, 1)
		for i := 0; i < 50; i++ {
			assert.True(t, crl.Allow("client-1"))
		}
	})

	t.Run("denies requests over burst for a single client", func(t *testing.T) {
		crl := NewClientRateLimiter(1, 2)
		assert.True(t, crl.Allow("client-1"))
		assert.True(t, crl.Allow("client-1"))
		assert.False(t, crl.Allow("client-1"))
	})

	t.Run("tracks separate budgets per client", func(t *testing.T) {
		crl := NewClientRateLimiter(1, 1)
		assert.True(t, crl.Allow("client-1"))
		assert.True(t, crl.Allow("client-2"))
		assert.False(t, crl.Allow("client-1"))
		assert.False(t, crl.Allow("client-2"))
	})
}

func TestClientRateLimit_Middleware(t *testing.T) {
	t.Run("allows requests within client limit", func(t *testing.T) {
		handler := ClientRateLimit(100, 10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("uses X-Forwarded-For when available", func(t *testing.T) {
		handler := ClientRateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for _, client := range []string{"10.0.0.1", "10.0.0.2"} {
			for i := 0; i < 2; i++ {
				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				req.Header.Set("X-Forwarded-For", client)
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)
				assert.Equal(t, http.StatusOK, w.Code)
			}
		}
	})

	t.Run("returns 429 when client limit exceeded", func(t *testing.T) {
		handler := ClientRateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if i < 2 {
				assert.Equal(t, http.StatusOK, w.Code)
			} else {
				assert.Equal(t, http.StatusTooManyRequests, w.Code)
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
				assert.Equal(t, "1", w.Header().Get("Retry-After"))
			}
		}
	})
}

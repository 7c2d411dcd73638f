package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/haseebdoesdev/go-task-scheduler/internal/logger"
)

// ClientRateLimiter keeps one golang.org/x/time/rate.Limiter per client
// identifier. Limiters are never evicted; the client-id space here is
// per-IP and the map stays small for this control surface.
type ClientRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewClientRateLimiter builds a limiter keyed by client identifier. A
// non-positive rps disables throttling (Allow always returns true).
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ClientRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

// Allow reports whether the client identified by clientID may proceed.
func (c *ClientRateLimiter) Allow(clientID string) bool {
	if c.rps <= 0 {
		return true
	}

	c.mu.Lock()
	limiter, ok := c.limiters[clientID]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(c.rps), c.burst)
		c.limiters[clientID] = limiter
	}
	c.mu.Unlock()

	return limiter.Allow()
}

// ClientRateLimit returns a middleware that throttles each client
// (identified by X-Forwarded-For, falling back to RemoteAddr) to rps
// requests per second with the given burst.
func ClientRateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := NewClientRateLimiter(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.Header.Get("X-Forwarded-For")
			if clientID == "" {
				clientID = r.RemoteAddr
			}

			if !limiter.Allow(clientID) {
				logger.Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("client", clientID).
					Msg("client rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too Many Requests","message":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs every request's method, path, status, and latency
// at Info level.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

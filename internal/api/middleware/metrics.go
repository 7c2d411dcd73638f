package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/haseebdoesdev/go-task-scheduler/internal/metrics"
)

// Metrics records every request's duration and status against
// internal/metrics' HTTP histogram/counter pair.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			metrics.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(sw.status), time.Since(start).Seconds())
		})
	}
}

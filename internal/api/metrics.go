// internal/api/metrics.go
package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knotulus_requests_total",
		Help: "API requests by endpoint and response code.",
	}, []string{"endpoint", "code"})

	rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knotulus_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	}, []string{"endpoint"})
)

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.code == 0 {
		s.code = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.code == 0 {
		s.code = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// observe counts every response for one endpoint, including guard and
// limiter rejections, so it wraps the whole per-route chain.
func observe(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			code := rec.code
			if code == 0 {
				code = http.StatusOK
			}
			requestsTotal.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
			if code == http.StatusTooManyRequests {
				rateLimitedTotal.WithLabelValues(endpoint).Inc()
			}
		})
	}
}

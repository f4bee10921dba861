package httpmetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AlibekovAA/bloglist/backend/internal/observability/metrics"
)

type Collector struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func New() *Collector {
	return &Collector{}
}

// Wrap records request counts and latency per route. The route pattern is
// read after next returns, so handlers between Wrap and the ServeMux must
// pass the request through unchanged.
func (c *Collector) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.BlogRequestsInFlight.Inc()
		defer metrics.BlogRequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := RouteLabel(r)
		statusClass := strconv.Itoa(rec.status/100) + "xx"
		metrics.BlogRequestsTotal.WithLabelValues(r.Method, route).Inc()
		metrics.BlogRequestDurationSeconds.WithLabelValues(r.Method, route, statusClass).Observe(time.Since(start).Seconds())
	})
}

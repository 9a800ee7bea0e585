package middleware

import (
	"net/http"
	"strconv"
	"time"

	"eventlog/internal/metrics"
)

// Duration observes request latency into metrics.HTTPRequestDuration, labelled with the
// matched ServeMux pattern so path parameters do not explode cardinality.
func Duration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

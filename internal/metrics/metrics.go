package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventlog_events_recorded_total",
		Help: "Total number of events inserted into the store.",
	})

	StoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventlog_store_failures_total",
		Help: "Total number of failed store operations, labelled by operation.",
	}, []string{"operation"})

	EmitFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventlog_emit_failures_total",
		Help: "Total number of recorded events that could not be fanned out to a sink.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventlog_http_request_duration_seconds",
		Help:    "HTTP request latency, labelled by route pattern, method and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
)

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
)

var (
	// Component operation metrics
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auctionsync_operations_total",
			Help: "Total number of page operations by component and outcome",
		},
		[]string{"component", "op", "outcome"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auctionsync_operation_duration_seconds",
			Help:    "Page operation duration in seconds, network round-trips included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"component", "op"},
	)

	// Rendered state
	RenderedNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "auctionsync_rendered_items",
			Help: "Number of items currently rendered per container",
		},
		[]string{"container"},
	)

	// HTTP metrics of both servers
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auctionsync_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status_code", "service"},
	)
)

// Observe records the outcome and duration of one operation.
func Observe(component, op, outcome string, started time.Time) {
	OperationsTotal.WithLabelValues(component, op, outcome).Inc()
	OperationDuration.WithLabelValues(component, op).Observe(time.Since(started).Seconds())
}

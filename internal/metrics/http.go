package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "blinkd",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "API request latency by operation and status code",
	Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
}, []string{"operation", "status"})

// ObserveHTTPRequest records one completed API request.
func ObserveHTTPRequest(operation, status string, d time.Duration) {
	httpRequestDuration.WithLabelValues(operation, status).Observe(d.Seconds())
}

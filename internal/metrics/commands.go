package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "blinkd",
	Subsystem: "command",
	Name:      "processed_total",
	Help:      "Commands written to the device, by parsed kind",
}, []string{"kind"})

// RecordCommand counts one processed command of the given kind.
func RecordCommand(kind string) {
	commandsTotal.WithLabelValues(kind).Inc()
}

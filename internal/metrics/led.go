// Package metrics provides Prometheus metrics for the LED controller and
// the command channel.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/smazurov/blinkd/internal/led"
)

var (
	ledRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blinkd",
		Subsystem: "led",
		Name:      "running",
		Help:      "1 while the LED is blinking",
	})

	ledFrequency = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blinkd",
		Subsystem: "led",
		Name:      "frequency_hz",
		Help:      "Configured blink frequency",
	})

	ledLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blinkd",
		Subsystem: "led",
		Name:      "level",
		Help:      "Last level written by a state transition (1 high, 0 low)",
	})

	ledToggles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blinkd",
		Subsystem: "led",
		Name:      "toggles_total",
		Help:      "Pin level writes made by the toggle task",
	})

	ledTasksAlive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blinkd",
		Subsystem: "led",
		Name:      "tasks_alive",
		Help:      "Toggle tasks currently running; never above 1",
	})
)

// LEDObserver records controller notifications as Prometheus metrics.
type LEDObserver struct{}

var _ led.Observer = LEDObserver{}

// StateChanged updates the state gauges.
func (LEDObserver) StateChanged(s led.Snapshot) {
	ledRunning.Set(boolToFloat(s.Status == led.Running))
	ledFrequency.Set(float64(s.FrequencyHz))
	ledLevel.Set(boolToFloat(s.Level))
}

// TaskStarted increments the live task gauge.
func (LEDObserver) TaskStarted() { ledTasksAlive.Inc() }

// TaskExited decrements the live task gauge.
func (LEDObserver) TaskExited() { ledTasksAlive.Dec() }

// Toggled counts a toggle.
func (LEDObserver) Toggled(bool) { ledToggles.Inc() }

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

package led

import (
	"time"

	"github.com/smazurov/blinkd/internal/events"
)

// Publisher forwards controller state changes onto the event bus.
type Publisher struct {
	NopObserver
	bus *events.Bus
}

// NewPublisher creates an Observer that publishes LEDStateChangedEvent.
func NewPublisher(bus *events.Bus) *Publisher {
	return &Publisher{bus: bus}
}

// StateChanged publishes the new state.
func (p *Publisher) StateChanged(s Snapshot) {
	p.bus.Publish(events.LEDStateChangedEvent{
		Status:      s.Status.String(),
		FrequencyHz: s.FrequencyHz,
		Level:       s.Level,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

package gpio

import (
	"log/slog"
	"sync"
)

// Sim is an in-memory Register for hosts without GPIO hardware.
// It records the level and number of level writes per pin.
type Sim struct {
	mu     sync.Mutex
	output map[int]bool
	level  map[int]bool
	writes map[int]int
	closed bool
	logger *slog.Logger
}

// NewSim creates a simulated register. A nil logger discards output.
func NewSim(logger *slog.Logger) *Sim {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sim{
		output: make(map[int]bool),
		level:  make(map[int]bool),
		writes: make(map[int]int),
		logger: logger,
	}
}

// ConfigureOutput marks pin as an output.
func (s *Sim) ConfigureOutput(pin int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output[pin] = true
}

// SetHigh records a high level on pin.
func (s *Sim) SetHigh(pin int) { s.set(pin, true) }

// SetLow records a low level on pin.
func (s *Sim) SetLow(pin int) { s.set(pin, false) }

func (s *Sim) set(pin int, high bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Error("GPIO write after close", "pin", pin, "high", high)
		return
	}
	if !s.output[pin] {
		s.logger.Warn("GPIO write to pin not configured as output", "pin", pin)
	}
	s.level[pin] = high
	s.writes[pin]++
}

// Level returns the last level written to pin.
func (s *Sim) Level(pin int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level[pin]
}

// IsOutput reports whether pin was configured as an output.
func (s *Sim) IsOutput(pin int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output[pin]
}

// Writes returns the number of level writes to pin.
func (s *Sim) Writes(pin int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[pin]
}

// Closed reports whether Close has been called.
func (s *Sim) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Name returns the backend name.
func (s *Sim) Name() string { return BackendSim }

// Close marks the register closed; later writes are logged and dropped.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

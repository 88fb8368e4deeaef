package gpio

import (
	"fmt"
	"log/slog"
	"sync"

	periphgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// periph implements Register using the periph.io host drivers.
type periph struct {
	mu     sync.Mutex
	pins   map[int]periphgpio.PinIO
	logger *slog.Logger
}

// newPeriph initialises the periph.io host. host.Init is safe to call repeatedly.
func newPeriph(logger *slog.Logger) (*periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return &periph{
		pins:   make(map[int]periphgpio.PinIO),
		logger: logger,
	}, nil
}

// resolve looks up a pin by BCM number and caches the handle.
func (p *periph) resolve(pin int) periphgpio.PinIO {
	p.mu.Lock()
	defer p.mu.Unlock()

	if io, ok := p.pins[pin]; ok {
		return io
	}
	name := fmt.Sprintf("GPIO%d", pin)
	io := gpioreg.ByName(name)
	if io == nil {
		p.logger.Warn("GPIO pin not found", "pin", pin, "name", name)
		return nil
	}
	p.pins[pin] = io
	return io
}

func (p *periph) out(pin int, level periphgpio.Level) {
	io := p.resolve(pin)
	if io == nil {
		return
	}
	if err := io.Out(level); err != nil {
		p.logger.Warn("Failed to drive GPIO pin", "pin", pin, "level", level.String(), "error", err)
	}
}

func (p *periph) ConfigureOutput(pin int) { p.out(pin, periphgpio.Low) }

func (p *periph) SetHigh(pin int) { p.out(pin, periphgpio.High) }

func (p *periph) SetLow(pin int) { p.out(pin, periphgpio.Low) }

func (p *periph) Name() string { return BackendPeriph }

// Close halts every pin this backend touched.
func (p *periph) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for num, io := range p.pins {
		if err := io.Halt(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("halt GPIO%d: %w", num, err)
		}
		delete(p.pins, num)
	}
	return firstErr
}

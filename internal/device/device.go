// Package device is the explicit context object behind the LED device file:
// it owns the register, the blink controller, the command processor and the
// status reporter, and serialises attach/detach against the data channels.
package device

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"

	"github.com/smazurov/blinkd/internal/command"
	"github.com/smazurov/blinkd/internal/events"
	"github.com/smazurov/blinkd/internal/gpio"
	"github.com/smazurov/blinkd/internal/led"
	"github.com/smazurov/blinkd/internal/status"
)

// MaxCommandLen bounds a single write on the command channel.
const MaxCommandLen = 4096

type lifecycle int

const (
	created lifecycle = iota
	attached
	detached
)

// Options configures a Device.
type Options struct {
	Pin         int
	FrequencyHz uint32
	Bus         *events.Bus // optional
	Observers   []led.Observer
}

// Device is a single-LED blink device.
type Device struct {
	reg      gpio.Register
	pin      int
	ctrl     *led.Controller
	proc     *command.Processor
	reporter *status.Reporter
	logger   *slog.Logger

	// Writers and readers hold the read lock; attach and detach the write lock.
	mu    sync.RWMutex
	state lifecycle
}

// New creates a device on reg, which it takes ownership of.
// No channel is usable until Attach.
func New(reg gpio.Register, opts Options, logger *slog.Logger) (*Device, error) {
	if err := gpio.ValidatePin(opts.Pin); err != nil {
		return nil, newError(ErrCodeInvalidPin, "invalid LED pin", err)
	}

	observers := opts.Observers
	if opts.Bus != nil {
		observers = append(observers, led.NewPublisher(opts.Bus))
	}

	ctrl := led.NewController(reg, led.Options{
		Pin:         opts.Pin,
		FrequencyHz: opts.FrequencyHz,
		Observers:   observers,
	}, logger)

	return &Device{
		reg:      reg,
		pin:      opts.Pin,
		ctrl:     ctrl,
		proc:     command.NewProcessor(ctrl, opts.Bus, logger),
		reporter: status.NewReporter(ctrl),
		logger:   logger,
	}, nil
}

// Attach configures the pin as a low output. Commands are accepted afterwards.
func (d *Device) Attach() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case attached:
		return nil
	case detached:
		return newError(ErrCodeDetached, "device already detached", nil)
	}

	d.reg.ConfigureOutput(d.pin)
	d.reg.SetLow(d.pin)
	d.state = attached
	d.logger.Info("LED device attached", "backend", d.reg.Name(), "pin", d.pin)
	return nil
}

// Detach stops and joins the toggle task, then releases the register.
// In-flight writes and reads complete first. Detach is idempotent.
func (d *Device) Detach() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == detached {
		return nil
	}
	d.state = detached

	d.ctrl.Close()
	if err := d.reg.Close(); err != nil {
		return fmt.Errorf("release %s register: %w", d.reg.Name(), err)
	}
	d.logger.Info("LED device detached")
	return nil
}

// Write applies one command and reports the whole buffer as consumed.
// Unknown commands are logged, not returned.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.checkAttached(); err != nil {
		return 0, err
	}
	if len(p) > MaxCommandLen {
		return 0, newError(ErrCodeResourceExhausted,
			fmt.Sprintf("command of %d bytes exceeds %d", len(p), MaxCommandLen), nil)
	}

	n, err := d.proc.Process(bytes.Clone(p))
	if err != nil {
		return n, newError(ErrCodeIO, "command failed", err)
	}
	return n, nil
}

// ReadAt reads the status snapshot at off. It returns 0, io.EOF at the end.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.checkAttached(); err != nil {
		return 0, err
	}
	return d.reporter.ReadAt(p, off)
}

// Snapshot returns the controller state.
func (d *Device) Snapshot() led.Snapshot {
	return d.ctrl.Snapshot()
}

// Backend names the register backend.
func (d *Device) Backend() string {
	return d.reg.Name()
}

// Pin returns the LED pin number.
func (d *Device) Pin() int {
	return d.pin
}

func (d *Device) checkAttached() error {
	switch d.state {
	case created:
		return newError(ErrCodeNotAttached, "device not attached", nil)
	case detached:
		return newError(ErrCodeDetached, "device detached", nil)
	}
	return nil
}

// Package led implements the blink state machine for a single GPIO LED.
//
// A Controller owns the LED state (status, frequency, toggle task) behind
// one mutex. Start spawns at most one toggle task; Stop cancels it and
// waits for it to exit before returning, so no toggle happens after Stop.
package led

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/smazurov/blinkd/internal/gpio"
)

// DefaultFrequencyHz is the blink frequency used when none is configured.
const DefaultFrequencyHz = 1

// Options configures a Controller.
type Options struct {
	Pin         int
	FrequencyHz uint32
	Observers   []Observer
}

// Controller is the blink state machine.
type Controller struct {
	reg       gpio.Register
	pin       int
	observers []Observer
	logger    *slog.Logger

	mu     sync.Mutex
	status Status
	freq   uint32
	task   *toggleTask
	closed bool

	// Published under mu, read by the toggle task without it.
	liveFreq atomic.Uint32
	level    atomic.Bool
}

// NewController creates a stopped controller driving pin through reg.
// The pin is not touched until the first transition.
func NewController(reg gpio.Register, opts Options, logger *slog.Logger) *Controller {
	freq := opts.FrequencyHz
	if freq == 0 {
		freq = DefaultFrequencyHz
	}
	c := &Controller{
		reg:       reg,
		pin:       opts.Pin,
		observers: opts.Observers,
		logger:    logger.With("pin", opts.Pin),
		freq:      freq,
	}
	c.liveFreq.Store(freq)
	return c
}

// Start spawns the toggle task. While already running it is a no-op
// returning ErrAlreadyRunning.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.logger.Error("Cannot start toggle task", "error", ErrClosed)
		return ErrClosed
	}
	if c.status == Running {
		c.logger.Info("Start ignored, already blinking", "frequency_hz", c.freq)
		return ErrAlreadyRunning
	}

	c.task = c.startTask()
	c.status = Running
	c.logger.Info("Blinking started", "frequency_hz", c.freq)
	c.notifyLocked()
	return nil
}

// Stop cancels the toggle task, waits for it to exit and drives the pin low.
// When stopped it is a no-op returning ErrNotRunning.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.status != Running {
		c.logger.Info("Stop ignored, not running")
		return ErrNotRunning
	}

	c.stopLocked()
	c.logger.Info("Blinking stopped")
	c.notifyLocked()
	return nil
}

func (c *Controller) stopLocked() {
	c.task.stop()
	c.reg.SetLow(c.pin)
	c.level.Store(false)
	c.task = nil
	c.status = Stopped
}

// SetFrequency changes the blink frequency. A running task picks up the new
// value on its next half period.
func (c *Controller) SetFrequency(hz uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if hz == 0 {
		return ErrInvalidFrequency
	}

	c.freq = hz
	c.liveFreq.Store(hz)
	c.logger.Info("Blink frequency changed", "frequency_hz", hz, "running", c.status == Running)
	c.notifyLocked()
	return nil
}

// SetLevel drives the pin directly. It returns ErrBusy while blinking.
func (c *Controller) SetLevel(high bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.status == Running {
		c.logger.Warn("Direct pin write refused while blinking", "high", high)
		return ErrBusy
	}

	if high {
		c.reg.SetHigh(c.pin)
	} else {
		c.reg.SetLow(c.pin)
	}
	c.level.Store(high)
	c.logger.Info("LED level set", "high", high)
	c.notifyLocked()
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops and joins the toggle task if running and leaves the pin low.
// Every later transition returns ErrClosed. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	switch {
	case c.status == Running:
		c.stopLocked()
		c.logger.Info("Blinking stopped for teardown")
		c.notifyLocked()
	case c.level.Load():
		c.reg.SetLow(c.pin)
		c.level.Store(false)
		c.logger.Info("LED turned off for teardown")
		c.notifyLocked()
	}
	c.closed = true
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Status:      c.status,
		FrequencyHz: c.freq,
		Level:       c.level.Load(),
	}
}

func (c *Controller) notifyLocked() {
	s := c.snapshotLocked()
	for _, o := range c.observers {
		o.StateChanged(s)
	}
}

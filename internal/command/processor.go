package command

import (
	"errors"
	"log/slog"
	"time"

	"github.com/smazurov/blinkd/internal/events"
	"github.com/smazurov/blinkd/internal/led"
	"github.com/smazurov/blinkd/internal/metrics"
)

// ErrInvalidCommand classifies a command that could not be parsed.
// It is logged and published, never returned from Process.
var ErrInvalidCommand = errors.New("invalid command")

// Controller is the subset of led.Controller the processor drives.
type Controller interface {
	Start() error
	Stop() error
	SetFrequency(hz uint32) error
	SetLevel(high bool) error
}

// Processor applies written commands to a controller.
type Processor struct {
	ctrl   Controller
	bus    *events.Bus
	logger *slog.Logger
}

// NewProcessor creates a processor. bus may be nil.
func NewProcessor(ctrl Controller, bus *events.Bus, logger *slog.Logger) *Processor {
	return &Processor{ctrl: ctrl, bus: bus, logger: logger}
}

// Process parses and applies one command. It consumes the whole buffer:
// unknown commands and no-op transitions are logged and reported as
// success. Only a closed controller is returned as an error.
func (p *Processor) Process(buf []byte) (int, error) {
	cmd := Parse(buf)
	metrics.RecordCommand(cmd.Kind.String())

	err := p.apply(cmd)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidCommand):
		p.reject(cmd)
	case errors.Is(err, led.ErrAlreadyRunning),
		errors.Is(err, led.ErrNotRunning),
		errors.Is(err, led.ErrBusy):
		p.logger.Info("Command had no effect", "command", cmd.Text, "reason", err)
	default:
		p.logger.Error("Command failed", "command", cmd.Text, "error", err)
		return 0, err
	}
	return len(buf), nil
}

func (p *Processor) apply(cmd Command) error {
	switch cmd.Kind {
	case Start:
		return p.ctrl.Start()
	case Stop:
		return p.ctrl.Stop()
	case SetFrequency:
		return p.ctrl.SetFrequency(cmd.FrequencyHz)
	case On:
		return p.ctrl.SetLevel(true)
	case Off:
		return p.ctrl.SetLevel(false)
	default:
		return ErrInvalidCommand
	}
}

func (p *Processor) reject(cmd Command) {
	p.logger.Warn("Ignoring invalid command", "command", cmd.Text, "reason", cmd.Reason)
	if p.bus == nil {
		return
	}
	p.bus.Publish(events.CommandRejectedEvent{
		Command:   cmd.Text,
		Reason:    cmd.Reason,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

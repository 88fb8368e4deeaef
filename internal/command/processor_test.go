package command

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/smazurov/blinkd/internal/events"
	"github.com/smazurov/blinkd/internal/gpio"
	"github.com/smazurov/blinkd/internal/led"
)

// fakeController records calls and returns a fixed error.
type fakeController struct {
	calls []string
	hz    uint32
	err   error
}

func (f *fakeController) Start() error { f.calls = append(f.calls, "start"); return f.err }
func (f *fakeController) Stop() error  { f.calls = append(f.calls, "stop"); return f.err }

func (f *fakeController) SetFrequency(hz uint32) error {
	f.calls = append(f.calls, "freq")
	f.hz = hz
	return f.err
}

func (f *fakeController) SetLevel(high bool) error {
	if high {
		f.calls = append(f.calls, "on")
	} else {
		f.calls = append(f.calls, "off")
	}
	return f.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestProcessor_Dispatch(t *testing.T) {
	tests := []struct {
		input    string
		wantCall string
	}{
		{input: "start", wantCall: "start"},
		{input: "stop\n", wantCall: "stop"},
		{input: "freq 7", wantCall: "freq"},
		{input: "on", wantCall: "on"},
		{input: "off", wantCall: "off"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ctrl := &fakeController{}
			p := NewProcessor(ctrl, nil, newTestLogger())

			n, err := p.Process([]byte(tt.input))
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if n != len(tt.input) {
				t.Errorf("Process() = %d, want %d", n, len(tt.input))
			}
			if len(ctrl.calls) != 1 || ctrl.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want [%s]", ctrl.calls, tt.wantCall)
			}
		})
	}
}

func TestProcessor_NoOpErrorsConsumeInput(t *testing.T) {
	for _, noop := range []error{led.ErrAlreadyRunning, led.ErrNotRunning, led.ErrBusy} {
		ctrl := &fakeController{err: noop}
		p := NewProcessor(ctrl, nil, newTestLogger())

		n, err := p.Process([]byte("start"))
		if err != nil || n != 5 {
			t.Errorf("Process() with %v = (%d, %v), want (5, nil)", noop, n, err)
		}
	}
}

func TestProcessor_ClosedControllerFails(t *testing.T) {
	ctrl := &fakeController{err: led.ErrClosed}
	p := NewProcessor(ctrl, nil, newTestLogger())

	n, err := p.Process([]byte("start"))
	if !errors.Is(err, led.ErrClosed) {
		t.Errorf("Process() error = %v, want ErrClosed", err)
	}
	if n != 0 {
		t.Errorf("Process() = %d on failure, want 0", n)
	}
}

func TestProcessor_UnknownCommand(t *testing.T) {
	bus := events.New()
	rejected := make(chan events.CommandRejectedEvent, 1)
	unsub := bus.Subscribe(func(e events.CommandRejectedEvent) { rejected <- e })
	defer unsub()

	ctrl := &fakeController{}
	p := NewProcessor(ctrl, bus, newTestLogger())

	input := []byte("banana")
	n, err := p.Process(input)
	if err != nil || n != len(input) {
		t.Fatalf("Process() = (%d, %v), want (%d, nil)", n, err, len(input))
	}
	if len(ctrl.calls) != 0 {
		t.Errorf("controller called for unknown command: %v", ctrl.calls)
	}

	select {
	case e := <-rejected:
		if e.Command != "banana" {
			t.Errorf("rejected command = %q, want banana", e.Command)
		}
	case <-time.After(time.Second):
		t.Fatal("no CommandRejectedEvent published")
	}
}

func TestProcessor_WithController(t *testing.T) {
	sim := gpio.NewSim(nil)
	sim.ConfigureOutput(17)
	ctrl := led.NewController(sim, led.Options{Pin: 17, FrequencyHz: 2}, newTestLogger())
	defer ctrl.Close()
	p := NewProcessor(ctrl, nil, newTestLogger())

	for _, cmd := range []string{"start", "freq 5"} {
		if _, err := p.Process([]byte(cmd)); err != nil {
			t.Fatalf("Process(%q) error = %v", cmd, err)
		}
	}
	if got := ctrl.Snapshot(); got.Status != led.Running || got.FrequencyHz != 5 {
		t.Errorf("Snapshot() = %+v, want running at 5 Hz", got)
	}

	for _, bad := range []string{"freq 0", "freq -1", "freq abc", "banana", ""} {
		if _, err := p.Process([]byte(bad)); err != nil {
			t.Errorf("Process(%q) error = %v", bad, err)
		}
	}
	if got := ctrl.Snapshot(); got.Status != led.Running || got.FrequencyHz != 5 {
		t.Errorf("invalid commands changed state: %+v", got)
	}

	if _, err := p.Process([]byte("stop")); err != nil {
		t.Fatalf("Process(stop) error = %v", err)
	}
	if got := ctrl.Snapshot().Status; got != led.Stopped {
		t.Errorf("Status = %v after stop, want Stopped", got)
	}
}

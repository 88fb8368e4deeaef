package led

import "errors"

var (
	// ErrAlreadyRunning is returned by Start while the toggle task runs.
	ErrAlreadyRunning = errors.New("blinking already running")

	// ErrNotRunning is returned by Stop when no toggle task runs.
	ErrNotRunning = errors.New("blinking not running")

	// ErrBusy is returned by SetLevel while the toggle task owns the pin.
	ErrBusy = errors.New("pin driven by toggle task")

	// ErrInvalidFrequency is returned by SetFrequency for zero.
	ErrInvalidFrequency = errors.New("frequency must be at least 1 Hz")

	// ErrClosed is returned by every transition after Close.
	ErrClosed = errors.New("controller closed")
)

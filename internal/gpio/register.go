// Package gpio drives a single GPIO output pin through one of several
// register backends: a memory-mapped BCM283x register block, periph.io,
// a sysfs LED class device, or an in-memory simulation.
package gpio

import "fmt"

// MaxPin is the highest pin number addressable in the BCM283x register block.
const MaxPin = 53

// Register abstracts pin configuration and level writes.
// Writes are fire-and-forget; backends log their own failures.
type Register interface {
	// ConfigureOutput selects the output function for pin. Safe to repeat.
	ConfigureOutput(pin int)

	// SetHigh drives pin high without touching any other pin.
	SetHigh(pin int)

	// SetLow drives pin low without touching any other pin.
	SetLow(pin int)

	// Name identifies the backend in logs and status output.
	Name() string

	// Close releases the underlying hardware mapping.
	Close() error
}

// ValidatePin reports whether pin is addressable by the register block.
func ValidatePin(pin int) error {
	if pin < 0 || pin > MaxPin {
		return fmt.Errorf("pin %d out of range 0-%d", pin, MaxPin)
	}
	return nil
}

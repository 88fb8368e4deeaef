package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

// UnitRestarter restarts a systemd unit over D-Bus.
type UnitRestarter struct {
	unit   string
	system bool
}

// NewUnitRestarter targets unit on the system bus, or the user bus when
// system is false.
func NewUnitRestarter(unit string, system bool) *UnitRestarter {
	return &UnitRestarter{unit: unit, system: system}
}

// Restart asks systemd to restart the unit in replace mode and waits for the
// job to be queued.
func (r *UnitRestarter) Restart(ctx context.Context) error {
	conn, err := r.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect to systemd: %w", err)
	}
	defer conn.Close()

	if _, err := conn.RestartUnitContext(ctx, r.unit, "replace", nil); err != nil {
		return fmt.Errorf("restart %s: %w", r.unit, err)
	}
	return nil
}

// ActiveState returns the unit's ActiveState property.
func (r *UnitRestarter) ActiveState(ctx context.Context) (string, error) {
	conn, err := r.connect(ctx)
	if err != nil {
		return "", fmt.Errorf("connect to systemd: %w", err)
	}
	defer conn.Close()

	prop, err := conn.GetUnitPropertyContext(ctx, r.unit, "ActiveState")
	if err != nil {
		return "", err
	}
	return prop.Value.String(), nil
}

func (r *UnitRestarter) connect(ctx context.Context) (*dbus.Conn, error) {
	if r.system {
		return dbus.NewSystemConnectionContext(ctx)
	}
	return dbus.NewUserConnectionContext(ctx)
}

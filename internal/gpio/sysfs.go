package gpio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Register on a Linux LED class device. The LED is bound
// to one name, so pin numbers only appear in logs.
type sysfs struct {
	ledPath string
	logger  *slog.Logger
}

// newSysfs binds to /sys/class/leds/<name> under root.
func newSysfs(root, name string, logger *slog.Logger) (*sysfs, error) {
	if root == "" {
		root = sysfsLEDPath
	}
	if name == "" {
		return nil, fmt.Errorf("sysfs backend needs an LED name")
	}
	ledPath := filepath.Join(root, name)
	if _, err := os.Stat(ledPath); err != nil {
		return nil, fmt.Errorf("LED %q not found at %s: %w", name, ledPath, err)
	}
	return &sysfs{ledPath: ledPath, logger: logger}, nil
}

// ConfigureOutput detaches any kernel trigger so brightness is under manual control.
func (s *sysfs) ConfigureOutput(pin int) {
	s.write(pin, "trigger", "none")
}

func (s *sysfs) SetHigh(pin int) { s.write(pin, "brightness", "1") }

func (s *sysfs) SetLow(pin int) { s.write(pin, "brightness", "0") }

func (s *sysfs) write(pin int, attr, value string) {
	path := filepath.Join(s.ledPath, attr)
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		s.logger.Warn("Failed to write LED attribute", "pin", pin, "path", path, "error", err)
	}
}

func (s *sysfs) Name() string { return BackendSysfs }

func (s *sysfs) Close() error { return nil }

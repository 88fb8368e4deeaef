package gpio

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Backend names accepted by New.
const (
	BackendAuto   = "auto"
	BackendMMIO   = "mmio"
	BackendPeriph = "periph"
	BackendSim    = "sim"
	BackendSysfs  = "sysfs"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// Config selects and parameterises a register backend.
type Config struct {
	Backend  string
	MemPath  string // mmio only; defaults to DefaultMemPath
	BaseAddr int64  // mmio only; zero for /dev/gpiomem
	LEDName  string // sysfs only, e.g. "ACT"
	LEDRoot  string // sysfs only; defaults to /sys/class/leds
}

// New creates a register backend.
// In auto mode a Raspberry Pi gets the mmio backend, falling back to periph,
// and any other board gets the simulator.
func New(cfg Config, logger *slog.Logger) (Register, error) {
	memPath := cfg.MemPath
	if memPath == "" {
		memPath = DefaultMemPath
	}

	switch cfg.Backend {
	case BackendMMIO:
		return newMMIO(memPath, cfg.BaseAddr, logger)
	case BackendPeriph:
		return newPeriph(logger)
	case BackendSim:
		return NewSim(logger), nil
	case BackendSysfs:
		return newSysfs(cfg.LEDRoot, cfg.LEDName, logger)
	case BackendAuto, "":
	default:
		return nil, fmt.Errorf("unknown GPIO backend %q", cfg.Backend)
	}

	boardModel := detectBoard()
	logger.Info("Detecting board for GPIO access", "board_model", boardModel)

	if !strings.Contains(boardModel, "Raspberry Pi") {
		logger.Info("No GPIO support detected, using simulated register", "board_model", boardModel)
		return NewSim(logger), nil
	}

	reg, err := newMMIO(memPath, cfg.BaseAddr, logger)
	if err == nil {
		logger.Info("Detected Raspberry Pi, using memory-mapped registers")
		return reg, nil
	}
	logger.Warn("Memory-mapped GPIO unavailable, trying periph", "error", err)

	p, err := newPeriph(logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Detected Raspberry Pi, using periph GPIO")
	return p, nil
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	// The model string is NUL-terminated.
	return strings.TrimRight(string(data), "\x00")
}

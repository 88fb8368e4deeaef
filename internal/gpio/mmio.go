package gpio

import (
	"log/slog"
	"sync"
)

const (
	// DefaultMemPath maps only the GPIO block and needs no base address.
	DefaultMemPath = "/dev/gpiomem"
	mapLength      = 4096
)

// mmio implements Register on a memory-mapped BCM283x register block.
type mmio struct {
	block  *RegisterBlock
	unmap  func() error
	once   sync.Once
	logger *slog.Logger
}

// newMMIO maps the register block from memPath at base.
func newMMIO(memPath string, base int64, logger *slog.Logger) (*mmio, error) {
	words, unmap, err := mapRegisters(memPath, base, mapLength)
	if err != nil {
		return nil, err
	}
	block, err := NewRegisterBlock(words)
	if err != nil {
		_ = unmap()
		return nil, err
	}
	logger.Info("Mapped GPIO registers", "path", memPath, "base", base)
	return newMMIOFromBlock(block, unmap, logger), nil
}

func newMMIOFromBlock(block *RegisterBlock, unmap func() error, logger *slog.Logger) *mmio {
	return &mmio{block: block, unmap: unmap, logger: logger}
}

func (m *mmio) ConfigureOutput(pin int) {
	m.block.SetFunctionSelect(pin, FuncOutput)
	m.logger.Debug("Configured pin as output", "pin", pin)
}

func (m *mmio) SetHigh(pin int) { m.block.Set(pin) }

func (m *mmio) SetLow(pin int) { m.block.Clear(pin) }

func (m *mmio) Name() string { return BackendMMIO }

// Close unmaps the register block. Later calls are no-ops.
func (m *mmio) Close() error {
	var err error
	m.once.Do(func() {
		if m.unmap != nil {
			err = m.unmap()
		}
	})
	return err
}

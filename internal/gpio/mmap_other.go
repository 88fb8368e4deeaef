//go:build !linux

package gpio

import "errors"

func mapRegisters(string, int64, int) ([]uint32, func() error, error) {
	return nil, nil, errors.New("memory-mapped GPIO requires linux")
}

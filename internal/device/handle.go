package device

import (
	"errors"
	"io"
	"os"
	"sync"
)

// Handle is one open of the device with its own read offset.
// Handles share no state besides the device.
type Handle struct {
	dev *Device

	mu     sync.Mutex
	off    int64
	closed bool
}

// Open returns a new independent handle.
func (d *Device) Open() (*Handle, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.checkAttached(); err != nil {
		return nil, err
	}
	return &Handle{dev: d}, nil
}

// Read reads the status snapshot from the handle's offset.
func (h *Handle) Read(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, os.ErrClosed
	}
	n, err := h.dev.ReadAt(p, h.off)
	h.off += int64(n)
	if err == io.EOF && n > 0 {
		// Report end of data on the next call, as a file would.
		err = nil
	}
	return n, err
}

// Write applies one command.
func (h *Handle) Write(p []byte) (int, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		return 0, os.ErrClosed
	}
	return h.dev.Write(p)
}

// Seek moves the read offset. SeekEnd is relative to a fresh snapshot.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, os.ErrClosed
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = h.off
	case io.SeekEnd:
		base = int64(len(h.dev.reporter.Snapshot()))
	default:
		return 0, errors.New("device: invalid whence")
	}
	if base+offset < 0 {
		return 0, errors.New("device: negative position")
	}
	h.off = base + offset
	return h.off, nil
}

// Close releases the handle. Device state is unaffected.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return os.ErrClosed
	}
	h.closed = true
	return nil
}

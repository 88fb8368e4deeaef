// Package status renders the LED state as the text served on the read channel.
package status

import (
	"errors"
	"fmt"
	"io"

	"github.com/smazurov/blinkd/internal/led"
)

// HelpText is appended to every snapshot.
const HelpText = `commands:
  start      blink the LED at the configured frequency
  stop       stop blinking and turn the LED off
  freq <n>   set the blink frequency to n Hz (n >= 1)
  on         turn the LED on (while stopped)
  off        turn the LED off (while stopped)
`

var errNegativeOffset = errors.New("status: negative offset")

// Source provides the state to report.
type Source interface {
	Snapshot() led.Snapshot
}

// Reporter renders snapshots of a Source.
type Reporter struct {
	src Source
}

// NewReporter creates a reporter for src.
func NewReporter(src Source) *Reporter {
	return &Reporter{src: src}
}

// Render formats s. The output is regenerated on every call.
func Render(s led.Snapshot) []byte {
	level := "off"
	if s.Level {
		level = "on"
	}
	return fmt.Appendf(nil, "status=%s\nfreq=%d\nled=%s\n\n%s", s.Status, s.FrequencyHz, level, HelpText)
}

// Snapshot renders the current state.
func (r *Reporter) Snapshot() []byte {
	return Render(r.src.Snapshot())
}

// ReadAt implements io.ReaderAt over a fresh snapshot. Reads never span past
// the snapshot; at or beyond its end ReadAt returns 0, io.EOF. Successive
// calls may observe different states.
func (r *Reporter) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativeOffset
	}
	snap := r.Snapshot()
	if off >= int64(len(snap)) {
		return 0, io.EOF
	}
	n := copy(p, snap[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

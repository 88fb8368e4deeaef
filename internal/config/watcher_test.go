package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func ledConfig(hz int) []byte {
	return fmt.Appendf(nil, "[led]\nfrequency_hz = %d\n", hz)
}

func startLEDWatcher(t *testing.T, path string, opts ...WatcherOption[LED]) *Watcher[LED] {
	t.Helper()
	opts = append([]WatcherOption[LED]{WithDebounce[LED](50 * time.Millisecond)}, opts...)
	w := NewConfigWatcher(path, LoadLED, newTestLogger(), opts...)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	})
	// let the watch loop settle
	time.Sleep(50 * time.Millisecond)
	return w
}

func TestConfigWatcher_Reload(t *testing.T) {
	path := writeConfig(t, string(ledConfig(1)))

	received := make(chan LED, 1)
	w := NewConfigWatcher(path, LoadLED, newTestLogger(), WithDebounce[LED](50*time.Millisecond))
	w.OnReload(func(led LED) { received <- led })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, ledConfig(8), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case led := <-received:
		if led.FrequencyHz != 8 {
			t.Errorf("FrequencyHz = %d, want 8", led.FrequencyHz)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_AtomicReplace(t *testing.T) {
	path := writeConfig(t, string(ledConfig(1)))
	w := startLEDWatcher(t, path)

	received := make(chan LED, 4)
	w.OnReload(func(led LED) { received <- led })

	tmp := filepath.Join(filepath.Dir(path), ".config.toml.swp")
	if err := os.WriteFile(tmp, ledConfig(25), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case led := <-received:
		if led.FrequencyHz != 25 {
			t.Errorf("FrequencyHz = %d, want 25", led.FrequencyHz)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload after rename")
	}
}

func TestConfigWatcher_IgnoresSiblings(t *testing.T) {
	path := writeConfig(t, string(ledConfig(1)))
	w := startLEDWatcher(t, path)

	var count atomic.Int32
	w.OnReload(func(LED) { count.Add(1) })

	sibling := filepath.Join(filepath.Dir(path), "other.toml")
	if err := os.WriteFile(sibling, ledConfig(3), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("handler called %d times for a sibling file", got)
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	path := writeConfig(t, string(ledConfig(1)))
	w := startLEDWatcher(t, path, WithDebounce[LED](200*time.Millisecond))

	var count atomic.Int32
	var last atomic.Uint32
	w.OnReload(func(led LED) {
		count.Add(1)
		last.Store(led.FrequencyHz)
	})

	for hz := 2; hz <= 6; hz++ {
		if err := os.WriteFile(path, ledConfig(hz), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(30 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("handler called %d times, want 1", got)
	}
	if got := last.Load(); got != 6 {
		t.Errorf("last FrequencyHz = %d, want 6", got)
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := writeConfig(t, string(ledConfig(1)))

	errs := make(chan error, 1)
	w := startLEDWatcher(t, path, WithErrorHandler[LED](func(err error) { errs <- err }))

	reloaded := make(chan LED, 1)
	w.OnReload(func(led LED) { reloaded <- led })

	if err := os.WriteFile(path, []byte("[led\nfrequency_hz = "), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errs:
	case <-reloaded:
		t.Fatal("handler should not run for an unparsable file")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	path := writeConfig(t, string(ledConfig(1)))
	w := startLEDWatcher(t, path)

	var kept, dropped atomic.Int32
	w.OnReload(func(LED) { kept.Add(1) })
	unsub := w.OnReload(func(LED) { dropped.Add(1) })
	unsub()
	unsub()

	if err := os.WriteFile(path, ledConfig(4), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if kept.Load() != 1 || dropped.Load() != 0 {
		t.Errorf("kept=%d dropped=%d, want 1 and 0", kept.Load(), dropped.Load())
	}
}

func TestConfigWatcher_Stop(t *testing.T) {
	path := writeConfig(t, string(ledConfig(1)))

	var count atomic.Int32
	w := NewConfigWatcher(path, LoadLED, newTestLogger(), WithDebounce[LED](50*time.Millisecond))
	w.OnReload(func(LED) { count.Add(1) })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, ledConfig(99), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("handler called %d times after Stop", got)
	}
}

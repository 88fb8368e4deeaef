package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func resetState() {
	mutex.Lock()
	defer mutex.Unlock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevels = make(map[string]*slog.LevelVar)
	isInitialized = false
	globalConfig = Config{}
	logBuffer = nil
	logCallback = nil
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"led": "debug",
			"api": "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"led", true, true, true},
		{"api", false, false, true},
		{"command", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()
			ctx := context.Background()

			if got := handler.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("Debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := handler.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("Info enabled = %v, want %v", got, tt.wantInfo)
			}
			if got := handler.Enabled(ctx, slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("Warn enabled = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState()

	before := GetLogger("gpio")
	handler := before.Handler()
	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger created before Initialize should default to info")
	}

	Initialize(Config{Level: "info", Modules: map[string]string{"gpio": "debug"}})

	after := GetLogger("gpio")
	if !after.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("gpio logger should have debug enabled after Initialize")
	}
	// The original handler shares the LevelVar.
	if !handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("handler obtained before Initialize should follow the new level")
	}
}

func TestSetModuleLevel(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info"})

	logger := GetLogger("led")
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should start disabled")
	}
	if !SetModuleLevel("led", "debug") {
		t.Fatal("SetModuleLevel() = false for valid level")
	}
	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be enabled after SetModuleLevel")
	}
	if SetModuleLevel("led", "verbose") {
		t.Error("SetModuleLevel() = true for unknown level")
	}
}

func TestBufferAndCallback(t *testing.T) {
	resetState()
	Initialize(Config{Level: "debug"})

	got := make(chan LogEntry, 4)
	SetLogCallback(func(e LogEntry) { got <- e })

	GetLogger("led").With("pin", 17).Info("Blinking started",
		"frequency_hz", 5,
		slog.Group("task", "half_period", 100*time.Millisecond),
		"error", errors.New("boom"),
	)

	select {
	case e := <-got:
		if e.Module != "led" || e.Message != "Blinking started" || e.Level != "info" {
			t.Errorf("entry = %+v", e)
		}
		want := map[string]any{
			"pin":              int64(17),
			"frequency_hz":     int64(5),
			"task.half_period": "100ms",
			"error":            "boom",
		}
		for k, v := range want {
			if e.Attributes[k] != v {
				t.Errorf("Attributes[%q] = %v (%T), want %v", k, e.Attributes[k], e.Attributes[k], v)
			}
		}
	case <-time.After(time.Second):
		t.Fatal("log callback not called")
	}

	if GetBuffer().Count() == 0 {
		t.Error("entry not buffered")
	}
}

func TestMultiHandlerDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	debug := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	info := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiHandler(debug, info)).With("module", "test")
	logger.Debug("debug only message")
	logger.Info("both handlers")

	output := buf.String()
	if n := strings.Count(output, "debug only message"); n != 1 {
		t.Errorf("debug message written %d times, want 1. Output: %s", n, output)
	}
	if n := strings.Count(output, "both handlers"); n != 2 {
		t.Errorf("info message written %d times, want 2. Output: %s", n, output)
	}
	if n := strings.Count(output, "module=test"); n != 3 {
		t.Errorf("module attr written %d times, want 3", n)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input  string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"invalid", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseLevel(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseLevel(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRingBufferTail(t *testing.T) {
	rb := NewRingBuffer(3)
	if rb.ReadAll() != nil {
		t.Fatal("empty buffer should read nil")
	}
	for _, msg := range []string{"a", "b", "c", "d"} {
		rb.Write(LogEntry{Message: msg})
	}

	messages := func(entries []LogEntry) string {
		var parts []string
		for _, e := range entries {
			parts = append(parts, e.Message)
		}
		return strings.Join(parts, ",")
	}

	if got := messages(rb.ReadAll()); got != "b,c,d" {
		t.Errorf("ReadAll() = %s, want b,c,d", got)
	}
	if got := messages(rb.Tail(2)); got != "c,d" {
		t.Errorf("Tail(2) = %s, want c,d", got)
	}
	if got := messages(rb.Tail(10)); got != "b,c,d" {
		t.Errorf("Tail(10) = %s, want b,c,d", got)
	}
	if rb.Count() != 3 {
		t.Errorf("Count() = %d, want 3", rb.Count())
	}
}

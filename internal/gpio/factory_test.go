package gpio

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	tests := []struct {
		name     string
		cfg      Config
		wantErr  bool
		wantName string
	}{
		{name: "simulated", cfg: Config{Backend: BackendSim}, wantName: BackendSim},
		{name: "unknown backend", cfg: Config{Backend: "parport"}, wantErr: true},
		{
			name:    "mmio without device",
			cfg:     Config{Backend: BackendMMIO, MemPath: filepath.Join(t.TempDir(), "gpiomem")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := New(tt.cfg, logger)
			if tt.wantErr {
				if err == nil {
					t.Errorf("New() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer reg.Close()
			if reg.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", reg.Name(), tt.wantName)
			}
		})
	}
}

func TestNew_Auto(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Should always return a usable register on a host without GPIO access.
	reg, err := New(Config{Backend: BackendAuto}, logger)
	if err != nil {
		t.Skipf("auto backend unavailable on this host: %v", err)
	}
	defer reg.Close()

	reg.ConfigureOutput(17)
	reg.SetLow(17)
}

func TestDetectBoard(t *testing.T) {
	model := detectBoard()

	if model == "" {
		t.Error("detectBoard() returned empty string")
	}
	if model == "unknown" {
		t.Log("Board model unknown (expected on non-SBC systems)")
	}
}

func TestValidatePin(t *testing.T) {
	for _, pin := range []int{0, 17, MaxPin} {
		if err := ValidatePin(pin); err != nil {
			t.Errorf("ValidatePin(%d) error = %v", pin, err)
		}
	}
	for _, pin := range []int{-1, MaxPin + 1} {
		if err := ValidatePin(pin); err == nil {
			t.Errorf("ValidatePin(%d) = nil, want error", pin)
		}
	}
}

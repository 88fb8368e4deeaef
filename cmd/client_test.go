package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smazurov/blinkd/internal/api"
	"github.com/smazurov/blinkd/internal/device"
	"github.com/smazurov/blinkd/internal/events"
	"github.com/smazurov/blinkd/internal/gpio"
)

func newTestServer(t *testing.T, user, pass string) (*httptest.Server, *device.Device) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	bus := events.New()

	dev, err := device.New(gpio.NewSim(nil), device.Options{Pin: 17, FrequencyHz: 1, Bus: bus}, logger)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Attach(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dev.Detach() })

	server := api.NewServer(&api.Options{
		AuthUsername: user,
		AuthPassword: pass,
		Device:       dev,
		EventBus:     bus,
	})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, dev
}

func TestClientWriteAndRead(t *testing.T) {
	ts, dev := newTestServer(t, "admin", "secret")
	client := NewClient(ts.URL, "admin", "secret", slog.New(slog.DiscardHandler))
	ctx := context.Background()

	n, err := client.Write(ctx, "freq 4")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len("freq 4") {
		t.Errorf("Write() = %d, want %d", n, len("freq 4"))
	}
	if got := dev.Snapshot().FrequencyHz; got != 4 {
		t.Errorf("FrequencyHz = %d, want 4", got)
	}

	for _, pageSize := range []int{1, 7, readPageSize, 4096} {
		text, err := client.ReadStatus(ctx, pageSize)
		if err != nil {
			t.Fatalf("ReadStatus(%d) error = %v", pageSize, err)
		}
		if !strings.HasPrefix(string(text), "status=stop\nfreq=4\nled=off\n") {
			t.Errorf("ReadStatus(%d) = %q", pageSize, text)
		}
	}
}

func TestClientErrors(t *testing.T) {
	ts, _ := newTestServer(t, "admin", "secret")
	ctx := context.Background()

	bad := NewClient(ts.URL, "admin", "wrong", slog.New(slog.DiscardHandler))
	if _, err := bad.Write(ctx, "start"); err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("Write() with bad credentials error = %v, want 401", err)
	}

	good := NewClient(ts.URL, "admin", "secret", slog.New(slog.DiscardHandler))
	_, err := good.Write(ctx, strings.Repeat("x", device.MaxCommandLen+1))
	if err == nil || !strings.Contains(err.Error(), "413") {
		t.Errorf("Write() oversized error = %v, want 413", err)
	}
}

func TestNewClientAddress(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8090", "http://localhost:8090"},
		{"pi.local:8090", "http://pi.local:8090"},
		{"https://pi.local/", "https://pi.local"},
	}
	for _, tt := range tests {
		if got := NewClient(tt.addr, "", "", slog.New(slog.DiscardHandler)).baseURL; got != tt.want {
			t.Errorf("NewClient(%q).baseURL = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestCtlCommand(t *testing.T) {
	ts, dev := newTestServer(t, "", "")

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		c := CreateCtlCmd()
		c.SetOut(&out)
		c.SetArgs(append(args, "--addr", ts.URL))
		if err := c.Execute(); err != nil {
			t.Fatalf("ctl %v error = %v", args, err)
		}
		return out.String()
	}

	if out := run("write", "freq", "3"); out != "wrote 6 bytes\n" {
		t.Errorf("write output = %q", out)
	}
	if out := run("write", "start"); out != "wrote 5 bytes\n" {
		t.Errorf("write output = %q", out)
	}
	if !strings.Contains(run("read"), "status=start\nfreq=3\n") {
		t.Error("read output should reflect the running state")
	}
	if dev.Snapshot().Status.String() != "start" {
		t.Error("device should be blinking")
	}
	run("write", "stop")
}

func TestClientRetriesUnavailable(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"written":5}`))
	}))
	t.Cleanup(ts.Close)

	client := NewClient(ts.URL, "", "", slog.New(slog.DiscardHandler))
	n, err := client.Write(context.Background(), "start")
	if err != nil || n != 5 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if calls != 2 {
		t.Errorf("server called %d times, want 2", calls)
	}
}

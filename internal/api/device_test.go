package api

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"

	"github.com/smazurov/blinkd/internal/device"
	"github.com/smazurov/blinkd/internal/events"
	"github.com/smazurov/blinkd/internal/gpio"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func newDeviceAPI(t *testing.T, dev Device) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	s := &Server{api: api, device: dev, options: &Options{}, logger: testLogger()}
	s.registerDeviceRoutes()
	return api
}

func TestDeviceWrite(t *testing.T) {
	dev := newTestDevice(t, events.New())
	api := newDeviceAPI(t, dev)

	tests := []struct {
		command    string
		wantStatus int
		wantBody   string
	}{
		{"start", http.StatusOK, `"written":5`},
		{"freq 10", http.StatusOK, `"written":7`},
		{"freq -3", http.StatusOK, `"written":7`},
		{"", http.StatusOK, `"written":0`},
		{strings.Repeat("x", device.MaxCommandLen+1), http.StatusRequestEntityTooLarge, ""},
		{"stop\n", http.StatusOK, `"written":5`},
	}

	for _, tt := range tests {
		resp := api.Post("/api/device/write", map[string]any{"command": tt.command})
		if resp.Code != tt.wantStatus {
			t.Errorf("write %.10q: status = %d, want %d: %s", tt.command, resp.Code, tt.wantStatus, resp.Body)
			continue
		}
		if tt.wantBody != "" && !strings.Contains(resp.Body.String(), tt.wantBody) {
			t.Errorf("write %.10q: body = %s, want %s", tt.command, resp.Body, tt.wantBody)
		}
	}

	snap := dev.Snapshot()
	if snap.Status.String() != "stop" || snap.FrequencyHz != 10 {
		t.Errorf("final state = %+v, want stopped at 10 Hz", snap)
	}
}

func TestDeviceReadPagination(t *testing.T) {
	api := newDeviceAPI(t, newTestDevice(t, nil))

	full := api.Get("/api/device/read")
	if full.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", full.Code, full.Body)
	}
	text := full.Body.String()
	if !strings.HasPrefix(text, "status=stop\nfreq=2\nled=off\n") {
		t.Fatalf("status text = %q", text)
	}
	if ct := full.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}

	var assembled strings.Builder
	for off := 0; ; off += 10 {
		resp := api.Get("/api/device/read?offset=" + strconv.Itoa(off) + "&length=10")
		if resp.Code != http.StatusOK {
			t.Fatalf("offset %d: status = %d", off, resp.Code)
		}
		if resp.Body.Len() == 0 {
			break
		}
		assembled.Write(resp.Body.Bytes())
	}
	if assembled.String() != text {
		t.Errorf("paged read = %q, want %q", assembled.String(), text)
	}

	if resp := api.Get("/api/device/read?offset=-1"); resp.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative offset status = %d, want 422", resp.Code)
	}
}

func TestDeviceStatus(t *testing.T) {
	dev := newTestDevice(t, nil)
	api := newDeviceAPI(t, dev)

	if _, err := dev.Write([]byte("start")); err != nil {
		t.Fatal(err)
	}

	resp := api.Get("/api/device/status")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{`"status":"start"`, `"frequency_hz":2`, `"backend":"sim"`, `"pin":17`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
}

func TestDeviceNotAttached(t *testing.T) {
	dev, err := device.New(gpio.NewSim(nil), device.Options{Pin: testPin}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	api := newDeviceAPI(t, dev)

	if resp := api.Post("/api/device/write", map[string]any{"command": "start"}); resp.Code != http.StatusServiceUnavailable {
		t.Errorf("write status = %d, want 503", resp.Code)
	}
	if resp := api.Get("/api/device/read"); resp.Code != http.StatusServiceUnavailable {
		t.Errorf("read status = %d, want 503", resp.Code)
	}
}

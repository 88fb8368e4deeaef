// Package systemd integrates blinkd with the service manager: readiness and
// stopping notifications, and unit restarts after a self-update.
package systemd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends sd_notify state updates. Outside systemd every call is a no-op.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier creates a notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// UnderSystemd reports whether a notification socket is configured.
func UnderSystemd() bool {
	return os.Getenv("NOTIFY_SOCKET") != ""
}

// Ready reports startup complete with a status line.
func (n *Notifier) Ready(status string) {
	n.send(daemon.SdNotifyReady, "STATUS="+status)
}

// Status updates the status line shown by systemctl.
func (n *Notifier) Status(format string, args ...any) {
	n.send("STATUS=" + fmt.Sprintf(format, args...))
}

// Stopping reports that shutdown has begun.
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

func (n *Notifier) send(states ...string) {
	for _, state := range states {
		sent, err := daemon.SdNotify(false, state)
		if err != nil {
			n.logger.Warn("sd_notify failed", "state", state, "error", err)
			return
		}
		if !sent {
			return
		}
	}
}

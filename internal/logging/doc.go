// Package logging provides slog loggers with per-module levels.
//
// Every module asks for its own logger once:
//
//	logger := logging.GetLogger("led")
//	logger.Info("Blinking started", "frequency_hz", 5)
//
// Records fan out to stdout (text or json), the systemd journal when journald
// is reachable, and an in-memory ring buffer that backs /api/logs/stream.
// Loggers obtained before Initialize keep working: their levels are LevelVars
// that Initialize updates in place.
//
// Levels are configured globally with per-module overrides:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	led = "debug"
//	api = "warn"
//
// Journal entries carry SYSLOG_IDENTIFIER=blinkd and one upper-cased field
// per attribute:
//
//	journalctl -t blinkd MODULE=led -f
package logging

package updater

import (
	"context"
	"time"
)

// State is the update state machine position.
type State string

// Update states.
const (
	StateIdle       State = "idle"
	StateChecking   State = "checking"
	StateAvailable  State = "available"
	StateApplying   State = "applying"
	StateRestarting State = "restarting"
	StateError      State = "error"
	StateRolledBack State = "rolled_back"
)

// Info describes the latest release relative to the running binary.
type Info struct {
	CurrentVersion  string
	LatestVersion   string
	ReleaseNotes    string
	ReleaseURL      string
	PublishedAt     time.Time
	AssetSize       int
	UpdateAvailable bool
}

// Status is a snapshot of the updater.
type Status struct {
	State           State
	CurrentVersion  string
	TargetVersion   string
	Error           string
	LastChecked     *time.Time
	BackupAvailable bool
	BackupVersion   string
}

// Restarter restarts the running service after a binary swap.
type Restarter interface {
	Restart(ctx context.Context) error
}

// Options configures the updater service.
type Options struct {
	Repository string // GitHub slug, e.g. "smazurov/blinkd"
	Prerelease bool
	BackupDir  string    // defaults to ~/.cache/blinkd/backup
	Restarter  Restarter // nil installs without restarting
}

// Package updater replaces the running blinkd binary with the latest GitHub
// release and keeps one backup for rollback.
package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/smazurov/blinkd/internal/logging"
	"github.com/smazurov/blinkd/internal/version"
)

const restartDelay = 500 * time.Millisecond

// releaseSource is the part of *selfupdate.Updater the service uses.
type releaseSource interface {
	DetectLatest(ctx context.Context, repo selfupdate.Repository) (*selfupdate.Release, bool, error)
	UpdateTo(ctx context.Context, rel *selfupdate.Release, cmdPath string) error
}

// Service checks for and applies releases.
type Service struct {
	repo      selfupdate.Repository
	source    releaseSource
	backups   *backups
	restarter Restarter
	exePath   string
	logger    *slog.Logger

	disabledReason string

	mu          sync.RWMutex
	state       State
	latest      *selfupdate.Release
	lastChecked *time.Time
	lastErr     error
}

// NewService creates an updater for opts.Repository. When the executable
// cannot be replaced the service is returned disabled rather than failing.
func NewService(opts Options) (*Service, error) {
	logger := logging.GetLogger("updater")

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	if reason := checkWritable(exe); reason != "" {
		logger.Warn("Update service disabled", "reason", reason)
		return &Service{state: StateIdle, disabledReason: reason, logger: logger}, nil
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("create GitHub source: %w", err)
	}
	up, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("create updater: %w", err)
	}

	return newService(selfupdate.ParseSlug(opts.Repository), up, exe, opts, logger), nil
}

func newService(repo selfupdate.Repository, src releaseSource, exe string, opts Options, logger *slog.Logger) *Service {
	s := &Service{
		repo:      repo,
		source:    src,
		restarter: opts.Restarter,
		exePath:   exe,
		state:     StateIdle,
		logger:    logger,
	}

	dir := opts.BackupDir
	if dir == "" {
		var err error
		if dir, err = defaultBackupDir(); err != nil {
			logger.Warn("Rollback unavailable", "error", err)
			return s
		}
	}
	b, err := openBackups(dir, logger)
	if err != nil {
		logger.Warn("Rollback unavailable", "error", err)
		return s
	}
	s.backups = b
	return s
}

// checkWritable returns why exe cannot be replaced, or "" if it can.
func checkWritable(exe string) string {
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Sprintf("resolve %s: %v", exe, err)
	}
	dir := filepath.Dir(resolved)
	f, err := os.CreateTemp(dir, ".blinkd-update-*")
	if err != nil {
		return fmt.Sprintf("no write permission to %s: %v", dir, err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return ""
}

// Enabled reports whether updates can be applied.
func (s *Service) Enabled() bool {
	return s.disabledReason == ""
}

// DisabledReason explains why the service is disabled.
func (s *Service) DisabledReason() string {
	return s.disabledReason
}

// Check queries the latest release without downloading it.
func (s *Service) Check(ctx context.Context) (*Info, error) {
	if !s.Enabled() {
		return nil, newError(ErrCodeDisabled, s.disabledReason, nil)
	}
	if !s.transition(StateChecking, StateIdle, StateAvailable, StateError, StateRolledBack) {
		return nil, newError(ErrCodeInvalidState,
			fmt.Sprintf("cannot check for updates while %s", s.currentState()), nil)
	}

	rel, found, err := s.source.DetectLatest(ctx, s.repo)
	now := time.Now()
	s.mu.Lock()
	s.lastChecked = &now
	s.mu.Unlock()

	if err != nil {
		s.fail(err)
		return nil, newError(ErrCodeCheckFailed, "failed to check for updates", err)
	}
	if !found {
		err := errors.New("repository not found or has no releases")
		s.fail(err)
		return nil, newError(ErrCodeNotFound, err.Error(), nil)
	}

	current := version.Version
	info := &Info{
		CurrentVersion: current,
		LatestVersion:  rel.Version(),
	}

	// dev builds are always behind a published release
	if current != "dev" && !rel.GreaterThan(current) {
		s.transition(StateIdle)
		return info, nil
	}

	s.mu.Lock()
	s.latest = rel
	s.mu.Unlock()
	s.transition(StateAvailable)

	info.ReleaseNotes = rel.ReleaseNotes
	info.ReleaseURL = rel.URL
	info.PublishedAt = rel.PublishedAt
	info.AssetSize = rel.AssetByteSize
	info.UpdateAvailable = true
	return info, nil
}

// Apply backs up the running binary, installs the latest release and
// schedules a restart if a Restarter is configured.
func (s *Service) Apply(ctx context.Context) error {
	if !s.Enabled() {
		return newError(ErrCodeDisabled, s.disabledReason, nil)
	}

	if s.currentState() != StateAvailable {
		info, err := s.Check(ctx)
		if err != nil {
			return err
		}
		if !info.UpdateAvailable {
			return newError(ErrCodeNoUpdate, "already running the latest release", nil)
		}
	}
	if !s.transition(StateApplying, StateAvailable) {
		return newError(ErrCodeInvalidState,
			fmt.Sprintf("cannot apply update while %s", s.currentState()), nil)
	}

	if s.backups != nil {
		if err := s.backups.save(s.exePath); err != nil {
			s.fail(err)
			return newError(ErrCodeBackupFailed, "failed to back up binary", err)
		}
	}

	s.mu.RLock()
	rel := s.latest
	s.mu.RUnlock()

	if err := s.source.UpdateTo(ctx, rel, s.exePath); err != nil {
		s.fail(err)
		s.rollbackAfterFailure()
		return newError(ErrCodeApplyFailed, "failed to install release", err)
	}

	s.logger.Info("Update installed", "version", rel.Version())
	s.scheduleRestart()
	return nil
}

// Rollback restores the backed up binary.
func (s *Service) Rollback(_ context.Context) error {
	if !s.Enabled() {
		return newError(ErrCodeDisabled, s.disabledReason, nil)
	}
	if _, ok := s.backups.available(); !ok {
		return newError(ErrCodeNoBackup, "no backup available for rollback", nil)
	}
	if err := s.backups.restore(); err != nil {
		return newError(ErrCodeRollbackFailed, "failed to restore backup", err)
	}

	s.transition(StateRolledBack)
	s.logger.Info("Rolled back to previous binary")
	s.scheduleRestart()
	return nil
}

// Status returns the current updater state.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		State:          s.state,
		CurrentVersion: version.Version,
		LastChecked:    s.lastChecked,
	}
	if s.latest != nil {
		st.TargetVersion = s.latest.Version()
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	st.BackupVersion, st.BackupAvailable = s.backups.available()
	return st
}

func (s *Service) transition(to State, from ...State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(from) > 0 && !slices.Contains(from, s.state) {
		return false
	}
	s.logger.Debug("Update state transition", "from", s.state, "to", to)
	s.state = to
	s.lastErr = nil
	return true
}

func (s *Service) currentState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateError
	s.lastErr = err
}

func (s *Service) rollbackAfterFailure() {
	if _, ok := s.backups.available(); !ok {
		s.logger.Error("No backup available for automatic rollback")
		return
	}
	if err := s.backups.restore(); err != nil {
		s.logger.Error("Automatic rollback failed", "error", err)
		return
	}
	s.transition(StateRolledBack)
}

func (s *Service) scheduleRestart() {
	if s.restarter == nil {
		s.transition(StateIdle)
		return
	}
	s.transition(StateRestarting)
	go func() {
		// let the HTTP response go out first
		time.Sleep(restartDelay)
		if err := s.restarter.Restart(context.Background()); err != nil {
			s.logger.Error("Restart after update failed", "error", err)
		}
	}()
}

// SignalRestarter restarts by sending SIGTERM to the current process and
// relying on the service manager to start it again.
type SignalRestarter struct{}

// Restart sends SIGTERM to the current process.
func (SignalRestarter) Restart(_ context.Context) error {
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}

package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/smazurov/blinkd/internal/version"
)

const (
	backupBinary   = "blinkd.backup"
	backupMetaFile = "backup.json"
)

var errNoBackup = errors.New("no backup available")

type backupMeta struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	ExecPath  string    `json:"exec_path"`
}

// backups keeps one copy of the previous binary for rollback.
type backups struct {
	dir    string
	logger *slog.Logger

	mu   sync.RWMutex
	meta *backupMeta
}

func defaultBackupDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "blinkd", "backup"), nil
}

func openBackups(dir string, logger *slog.Logger) (*backups, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	b := &backups{dir: dir, logger: logger}

	data, err := os.ReadFile(filepath.Join(dir, backupMetaFile))
	if err != nil {
		return b, nil
	}
	var meta backupMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		logger.Warn("Ignoring unreadable backup metadata", "error", err)
		return b, nil
	}
	if _, err := os.Stat(b.binaryPath()); err != nil {
		logger.Warn("Backup binary missing", "path", b.binaryPath())
		return b, nil
	}
	b.meta = &meta
	logger.Info("Found previous binary backup", "version", meta.Version)
	return b, nil
}

func (b *backups) binaryPath() string {
	return filepath.Join(b.dir, backupBinary)
}

// save copies execPath into the backup slot, replacing any older backup.
func (b *backups) save(execPath string) error {
	if err := copyFile(execPath, b.binaryPath()); err != nil {
		return fmt.Errorf("copy executable: %w", err)
	}

	meta := backupMeta{
		Version:   version.Version,
		CreatedAt: time.Now(),
		ExecPath:  execPath,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal backup metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(b.dir, backupMetaFile), data, 0o644); err != nil {
		return fmt.Errorf("write backup metadata: %w", err)
	}

	b.mu.Lock()
	b.meta = &meta
	b.mu.Unlock()

	b.logger.Info("Binary backed up", "version", meta.Version, "path", b.binaryPath())
	return nil
}

// restore copies the backup over the executable it was taken from.
func (b *backups) restore() error {
	b.mu.RLock()
	meta := b.meta
	b.mu.RUnlock()

	if meta == nil {
		return errNoBackup
	}
	if err := copyFile(b.binaryPath(), meta.ExecPath); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	b.logger.Info("Binary restored from backup", "version", meta.Version)
	return nil
}

func (b *backups) available() (string, bool) {
	if b == nil {
		return "", false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.meta == nil {
		return "", false
	}
	return b.meta.Version, true
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Package backup keeps timestamped JSON snapshots of the habit collection
// next to the data store, independent of the storage backend.
package backup

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/smallwins/internal/calendar"
	"github.com/julianstephens/smallwins/internal/constants"
	"github.com/julianstephens/smallwins/internal/logger"
	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/transfer"
)

const (
	minuteLayout = "20060102-1504"
	secondLayout = "20060102-150405"
)

// Info describes a backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
	Habits    int
	Logs      int
}

// Manager creates, lists, rotates and restores snapshots.
type Manager struct {
	backupDir  string
	maxBackups int
	clock      calendar.Clock
}

// NewManager stores snapshots under dataDir/backups and keeps at most
// maxBackups of them. A nil clock means the system clock.
func NewManager(dataDir string, maxBackups int, clock calendar.Clock) *Manager {
	if maxBackups < 1 {
		maxBackups = constants.MaxBackups
	}
	if clock == nil {
		clock = calendar.SystemClock{}
	}
	return &Manager{
		backupDir:  filepath.Join(dataDir, constants.BackupDirName),
		maxBackups: maxBackups,
		clock:      clock,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes c to a new snapshot and prunes the oldest snapshots
// beyond the retention limit.
func (m *Manager) CreateBackup(c models.Collection) (string, error) {
	return m.createBackup(c, false)
}

// createBackup skips rotation for the safety snapshot taken before a
// restore, so the restore source can never be rotated away.
func (m *Manager) createBackup(c models.Collection, skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath, err := m.nextBackupPath()
	if err != nil {
		return "", err
	}

	data, err := transfer.Marshal(c)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(backupPath, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}

	logger.Info("Created backup", "path", backupPath, "habits", len(c))
	return backupPath, nil
}

// nextBackupPath names the snapshot by minute, falling back to seconds and
// then a counter when that name is taken.
func (m *Manager) nextBackupPath() (string, error) {
	now := m.clock.Now()
	candidate := func(stamp string) string {
		return filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)
	}

	path := candidate(now.Format(minuteLayout))
	if !exists(path) {
		return path, nil
	}

	stamp := now.Format(secondLayout)
	path = candidate(stamp)
	for counter := 1; exists(path); counter++ {
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = candidate(stamp + "-" + strconv.Itoa(counter))
	}
	return path, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// parseStamp extracts the timestamp from a backup file name, ignoring a
// trailing counter.
func parseStamp(name string) (time.Time, bool) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	parts := strings.Split(stamp, "-")
	if len(parts) > 2 {
		last := parts[len(parts)-1]
		if _, err := strconv.Atoi(last); err == nil && len(last) != 4 && len(last) != 6 {
			stamp = strings.Join(parts[:len(parts)-1], "-")
		}
	}

	for _, layout := range []string{minuteLayout, secondLayout} {
		if t, err := time.ParseInLocation(layout, stamp, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ListBackups returns every snapshot, newest first. Files that do not parse
// as snapshots are skipped.
func (m *Manager) ListBackups() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
			continue
		}
		ts, ok := parseStamp(name)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.backupDir, name),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	slices.SortStableFunc(backups, func(a, b Info) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		// same minute: the counter suffix sorts later names first
		return strings.Compare(b.Path, a.Path)
	})
	return backups, nil
}

// Describe reads a snapshot and fills in its habit and log counts.
func (m *Manager) Describe(info Info) (Info, error) {
	c, err := m.ReadBackup(info.Path)
	if err != nil {
		return info, err
	}
	info.Habits = len(c)
	info.Logs = c.LogCount()
	return info, nil
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := m.maxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
		logger.Debug("Rotated backup", "path", backups[i].Path)
	}
	return nil
}

// ReadBackup decodes and shape-checks a snapshot.
func (m *Manager) ReadBackup(path string) (models.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("backup file does not exist: %s", path)
		}
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	c, err := transfer.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}
	return c, nil
}

// Resolve accepts a backup path or a bare file name inside the backup
// directory.
func (m *Manager) Resolve(nameOrPath string) string {
	if filepath.Base(nameOrPath) == nameOrPath && !exists(nameOrPath) {
		return filepath.Join(m.backupDir, nameOrPath)
	}
	return nameOrPath
}

// PrepareRestore reads the snapshot at path and passes it to accept. Only
// when accept returns nil is current saved as a safety snapshot. A nil
// accept takes every readable snapshot. It returns the collection to
// install and the safety snapshot's path.
func (m *Manager) PrepareRestore(path string, current models.Collection, accept func(models.Collection) error) (models.Collection, string, error) {
	restored, err := m.ReadBackup(path)
	if err != nil {
		return nil, "", err
	}
	if accept != nil {
		if err := accept(restored); err != nil {
			return nil, "", fmt.Errorf("backup rejected: %w", err)
		}
	}
	safety, err := m.createBackup(current, true)
	if err != nil {
		return nil, "", fmt.Errorf("failed to backup current habits before restore: %w", err)
	}
	return restored, safety, nil
}

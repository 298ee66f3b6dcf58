// Package sqldb persists the habit collection in a relational database. It
// holds the SQL shared by the SQLite and PostgreSQL providers.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/julianstephens/smallwins/internal/logger"
	"github.com/julianstephens/smallwins/internal/migration"
	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/migrations"
)

// ErrNotInitialized is returned when a store is used before Init or Load.
var ErrNotInitialized = errors.New("storage not initialized, run 'smallwins init' first")

// Dialect captures what differs between database backends.
type Dialect struct {
	Name          string
	Bind          migration.Placeholder
	MigrationsDir string
}

var (
	SQLite   = Dialect{Name: "sqlite", Bind: migration.Question, MigrationsDir: "sqlite"}
	Postgres = Dialect{Name: "postgres", Bind: migration.Dollar, MigrationsDir: "postgres"}
)

// Store reads and writes the collection through an open *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, s.dialect.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.dialect.Name, err)
	}
	return migration.NewRunner(s.db, subFS, s.dialect.Bind), nil
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	r, err := s.runner()
	if err != nil {
		return 0, err
	}
	return r.ApplyMigrations(ctx, func(msg string) {
		logger.Info(msg, "backend", s.dialect.Name)
	})
}

// ValidateSchema fails when the database schema is newer than this build.
func (s *Store) ValidateSchema(ctx context.Context) error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	return r.ValidateVersion(ctx)
}

// SchemaVersion returns the applied and the latest known schema versions.
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	r, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = r.GetCurrentVersion(ctx); err != nil {
		return 0, 0, err
	}
	if latest, err = r.GetLatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

// bind numbers the ? placeholders of query for the dialect.
func (s *Store) bind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.dialect.Bind(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LoadHabits returns the stored collection in its persisted order with logs
// in append order.
func (s *Store) LoadHabits(ctx context.Context) (models.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_ms, archived FROM habits ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	c := models.Collection{}
	index := make(map[string]int)
	for rows.Next() {
		var h models.Habit
		var createdMs int64
		if err := rows.Scan(&h.ID, &h.Name, &createdMs, &h.Archived); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		h.CreatedTime = time.UnixMilli(createdMs).UTC()
		h.Logs = []models.HabitLog{}
		index[h.ID] = len(c)
		c = append(c, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read habits: %w", err)
	}

	logRows, err := s.db.QueryContext(ctx,
		"SELECT habit_id, time_ms FROM habit_logs ORDER BY habit_id, seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query habit logs: %w", err)
	}
	defer logRows.Close()

	for logRows.Next() {
		var habitID string
		var ms int64
		if err := logRows.Scan(&habitID, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan habit log: %w", err)
		}
		i, ok := index[habitID]
		if !ok {
			logger.Warn("Skipping log for unknown habit", "habit_id", habitID)
			continue
		}
		c[i].Logs = append(c[i].Logs, models.HabitLog{Time: time.UnixMilli(ms).UTC()})
	}
	if err := logRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read habit logs: %w", err)
	}

	return c, nil
}

// SaveHabits replaces the stored collection with c in a single
// transaction.
func (s *Store) SaveHabits(ctx context.Context, c models.Collection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM habit_logs"); err != nil {
		return fmt.Errorf("failed to clear habit logs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM habits"); err != nil {
		return fmt.Errorf("failed to clear habits: %w", err)
	}

	habitStmt, err := tx.PrepareContext(ctx, s.bind(
		"INSERT INTO habits (id, position, name, created_ms, archived) VALUES (?, ?, ?, ?, ?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare habit insert: %w", err)
	}
	defer habitStmt.Close()

	logStmt, err := tx.PrepareContext(ctx, s.bind(
		"INSERT INTO habit_logs (habit_id, seq, time_ms) VALUES (?, ?, ?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare log insert: %w", err)
	}
	defer logStmt.Close()

	for pos, h := range c {
		if _, err := habitStmt.ExecContext(ctx, h.ID, pos, h.Name, h.CreatedTime.UnixMilli(), h.Archived); err != nil {
			return fmt.Errorf("failed to insert habit %s: %w", h.ID, err)
		}
		for seq, l := range h.Logs {
			if _, err := logStmt.ExecContext(ctx, h.ID, seq, l.Time.UnixMilli()); err != nil {
				return fmt.Errorf("failed to insert log %d of habit %s: %w", seq, h.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit habits: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

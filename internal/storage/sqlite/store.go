package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/storage/sqldb"
)

// Store keeps the collection in a SQLite database file.
type Store struct {
	path string
	sql  *sqldb.Store
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) open() error {
	dsn := s.path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	s.sql = sqldb.New(db, sqldb.SQLite)
	return nil
}

// Init creates the database file if needed and migrates it to the latest
// schema. Calling Init on an existing database only applies pending
// migrations.
func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if s.sql == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	if _, err := s.sql.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	if s.sql != nil {
		return nil
	}
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return sqldb.ErrNotInitialized
	}
	if err := s.open(); err != nil {
		return err
	}
	return s.sql.ValidateSchema(ctx)
}

// Migrate applies pending migrations to an existing database.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if err := s.Load(ctx); err != nil {
		return 0, err
	}
	return s.sql.Migrate(ctx)
}

// SchemaVersion reports the applied and the newest embedded schema
// versions.
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	if err := s.Load(ctx); err != nil {
		return 0, 0, err
	}
	return s.sql.SchemaVersion(ctx)
}

func (s *Store) LoadHabits(ctx context.Context) (models.Collection, error) {
	if s.sql == nil {
		return nil, sqldb.ErrNotInitialized
	}
	return s.sql.LoadHabits(ctx)
}

func (s *Store) SaveHabits(ctx context.Context, c models.Collection) error {
	if s.sql == nil {
		return sqldb.ErrNotInitialized
	}
	return s.sql.SaveHabits(ctx, c)
}

func (s *Store) Close() error {
	err := s.sql.Close()
	s.sql = nil
	return err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, or nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	if s.sql == nil {
		return nil
	}
	return s.sql.DB()
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/smallwins/internal/constants"
	"github.com/julianstephens/smallwins/internal/logger"
	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/storage/sqldb"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// Store keeps the collection in the smallwins schema of a PostgreSQL
// database.
type Store struct {
	connStr string
	sql     *sqldb.Store
}

func New(connStr string) *Store {
	return &Store{connStr: withSearchPath(strings.TrimSpace(connStr))}
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// withSearchPath points unqualified table names at the smallwins schema
// unless the caller already chose a search_path.
func withSearchPath(connStr string) string {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.PostgresSearchPath)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if hasParam(connStr, "search_path") {
		return connStr
	}
	return strings.TrimSpace(connStr + " search_path=" + constants.PostgresSearchPath)
}

// hasParam reports whether a key=value DSN sets key (case-insensitive).
func hasParam(connStr, key string) bool {
	for _, part := range strings.Fields(connStr) {
		k, _, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	return hasParam(connStr, "sslmode")
}

// ValidateConnString checks that connStr is a well-formed PostgreSQL URL
// or key=value DSN. Passwords are rejected with ErrEmbeddedCredentials;
// they belong in the keyring, the environment or .pgpass.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := u.User.Password(); isSet {
			return ErrEmbeddedCredentials
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return nil
	}

	if hasParam(connStr, "password") {
		return ErrEmbeddedCredentials
	}
	return nil
}

func (s *Store) open(ctx context.Context) error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.sql = sqldb.New(db, sqldb.Postgres)
	return nil
}

// Init creates the smallwins schema if needed and migrates it.
func (s *Store) Init(ctx context.Context) error {
	if s.sql == nil {
		if err := s.open(ctx); err != nil {
			return err
		}
	}
	if _, err := s.sql.DB().ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(constants.PostgresSearchPath)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
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
	if err := s.open(ctx); err != nil {
		return err
	}
	current, _, err := s.sql.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		return sqldb.ErrNotInitialized
	}
	return s.sql.ValidateSchema(ctx)
}

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

// GetConfigPath returns a non-sensitive identifier instead of the
// connection string.
func (s *Store) GetConfigPath() string {
	return "postgresql"
}

package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/smallwins/internal/config"
	"github.com/julianstephens/smallwins/internal/constants"
	"github.com/julianstephens/smallwins/internal/keyring"
	"github.com/julianstephens/smallwins/internal/logger"
	"github.com/julianstephens/smallwins/internal/storage/postgres"
	"github.com/julianstephens/smallwins/internal/storage/sqldb"
	"github.com/julianstephens/smallwins/internal/storage/sqlite"
)

// ErrNotInitialized is returned when the store has not been created yet.
var ErrNotInitialized = sqldb.ErrNotInitialized

var (
	_ Provider = (*JSONStore)(nil)
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
	_ Migrator = (*sqlite.Store)(nil)
	_ Migrator = (*postgres.Store)(nil)

	_ SchemaReporter = (*sqlite.Store)(nil)
	_ SchemaReporter = (*postgres.Store)(nil)
)

// New returns the provider selected by cfg. It does not touch the backend;
// call Init or Load next.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.Storage {
	case constants.StorageJSON, constants.StorageSQLite:
		dataDir, err := cfg.ResolvedDataDir()
		if err != nil {
			return nil, err
		}
		if cfg.Storage == constants.StorageJSON {
			return NewJSONStore(filepath.Join(dataDir, constants.JSONStoreFileName)), nil
		}
		return sqlite.NewStore(filepath.Join(dataDir, constants.SQLiteDBFileName)), nil
	case constants.StoragePostgres:
		connStr, err := ResolveConnString(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage)
}

// ResolveConnString finds the PostgreSQL connection string: the
// SMALLWINS_DB_CONNECTION environment variable, then the OS keyring, then
// the password-free postgres_dsn from the config file.
func ResolveConnString(cfg *config.Config) (string, error) {
	connStr, source, err := keyring.LookupConnectionString()
	switch {
	case err == nil:
		logger.Debug("Using PostgreSQL connection string", "source", source)
		return connStr, nil
	case errors.Is(err, keyring.ErrNotFound), errors.Is(err, keyring.ErrKeyringUnavailable):
		logger.Debug("No PostgreSQL connection string in environment or keyring", "error", err)
	default:
		return "", err
	}

	if cfg.PostgresDSN == "" {
		return "", fmt.Errorf("no PostgreSQL connection configured: set %s, run 'smallwins config set-connection', or set postgres_dsn", constants.EnvDBConnection)
	}
	if err := postgres.ValidateConnString(cfg.PostgresDSN); err != nil {
		return "", fmt.Errorf("postgres_dsn: %w", err)
	}
	return cfg.PostgresDSN, nil
}

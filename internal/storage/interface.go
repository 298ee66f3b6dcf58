package storage

import (
	"context"

	"github.com/julianstephens/smallwins/internal/models"
)

// Provider persists the habit collection. Implementations are not safe for
// concurrent use; the app controller serializes access.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Habits
	LoadHabits(ctx context.Context) (models.Collection, error)
	SaveHabits(ctx context.Context, c models.Collection) error

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by providers backed by a versioned schema.
type Migrator interface {
	Migrate(ctx context.Context) (int, error)
}

// SchemaReporter is implemented by providers that can report their schema
// version.
type SchemaReporter interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

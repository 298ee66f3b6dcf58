package cli

import (
	"fmt"

	"github.com/julianstephens/smallwins/internal/constants"
	"github.com/julianstephens/smallwins/internal/storage"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	store, err := ctx.Provider()
	if err != nil {
		return err
	}

	migrator, ok := store.(storage.Migrator)
	if !ok {
		return fmt.Errorf("migrate command only supports %s and %s storage, current storage is %s", constants.StorageSQLite, constants.StoragePostgres, ctx.Config.Storage)
	}

	count, err := migrator.Migrate(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.println("No migrations to apply. Database is up to date.")
	} else {
		ctx.println(success(fmt.Sprintf("Successfully applied %d migration(s).", count)))
	}
	return nil
}

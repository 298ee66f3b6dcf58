package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/smallwins/internal/config"
	"github.com/julianstephens/smallwins/internal/constants"
	"github.com/julianstephens/smallwins/internal/keyring"
	"github.com/julianstephens/smallwins/internal/storage/postgres"
)

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *Context) error {
	ctx.printf("%s %s\n\n", titleStyle.Render("Config file:"), ctx.ConfigPath)
	m := &config.Manager{}
	if err := m.Write(ctx.out(), ctx.Config); err != nil {
		return err
	}

	if ctx.Config.Storage != constants.StoragePostgres {
		return nil
	}
	ctx.println()
	connStr, source, err := keyring.LookupConnectionString()
	switch {
	case err == nil:
		ctx.printf("Connection (%s): %s\n", source, maskPassword(connStr))
	case errors.Is(err, keyring.ErrNotFound), errors.Is(err, keyring.ErrKeyringUnavailable):
		if ctx.Config.PostgresDSN != "" {
			ctx.printf("Connection (config): %s\n", ctx.Config.PostgresDSN)
		} else {
			ctx.println(warnStyle.Render("No PostgreSQL connection configured."))
		}
	default:
		return err
	}
	return nil
}

type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting to change." enum:"storage,data_dir,timezone,max_backups,export_dir,postgres_dsn"`
	Value string `arg:"" help:"New value."`
}

func (c *ConfigSetCmd) Run(ctx *Context) error {
	updated := *ctx.Config
	value := strings.TrimSpace(c.Value)

	switch c.Key {
	case "storage":
		updated.Storage = strings.ToLower(value)
	case "data_dir":
		updated.DataDir = value
	case "timezone":
		updated.Timezone = value
	case "max_backups":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_backups must be a number: %w", err)
		}
		updated.MaxBackups = n
	case "export_dir":
		updated.ExportDir = value
	case "postgres_dsn":
		if value != "" {
			if err := postgres.ValidateConnString(value); err != nil {
				if errors.Is(err, postgres.ErrEmbeddedCredentials) {
					return fmt.Errorf("%w: store passwords with 'smallwins config set-connection' instead", err)
				}
				return err
			}
		}
		updated.PostgresDSN = value
	default:
		return fmt.Errorf("unknown setting %q", c.Key)
	}

	if err := config.Save(ctx.ConfigPath, &updated); err != nil {
		return err
	}
	*ctx.Config = updated
	ctx.println(success(fmt.Sprintf("Set %s = %s", c.Key, value)))
	return nil
}

// ConfigSetConnectionCmd stores the PostgreSQL connection string in the OS
// keyring.
type ConfigSetConnectionCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in the keyring."`
}

func (c *ConfigSetConnectionCmd) Run(ctx *Context) error {
	if err := postgres.ValidateConnString(c.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// Embedded passwords are allowed in the keyring
		ctx.println(warnStyle.Render("Warning: connection string contains embedded credentials."))
		ctx.println("  It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(c.ConnectionString); err != nil {
		return err
	}

	ctx.println(success("Connection string stored in OS keyring"))
	if ctx.Config.Storage != constants.StoragePostgres {
		ctx.println("  Run 'smallwins config set storage postgres' to use it.")
	}
	return nil
}

type ConfigClearConnectionCmd struct{}

func (c *ConfigClearConnectionCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	ctx.println(success("Connection string deleted from OS keyring"))
	return nil
}

// maskPassword hides the password of a URL or key=value connection string.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		scheme, rest, _ := strings.Cut(connStr, "://")
		if at := strings.LastIndex(rest, "@"); at != -1 {
			userInfo := rest[:at]
			if user, _, hasPassword := strings.Cut(userInfo, ":"); hasPassword {
				return scheme + "://" + user + ":****" + rest[at:]
			}
		}
		return connStr
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}

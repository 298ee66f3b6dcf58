package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/smallwins/internal/cli"
	"github.com/julianstephens/smallwins/internal/config"
	"github.com/julianstephens/smallwins/internal/constants"
	"github.com/julianstephens/smallwins/internal/errors"
	"github.com/julianstephens/smallwins/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_path}"`
	Debug   bool   `help:"Write debug logs to stderr."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize smallwins storage."`
	Migrate  cli.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate cli.ValidateCmd `cmd:"" help:"Check stored habits for problems."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive habit browser."`

	Add     cli.AddCmd     `cmd:"" help:"Add a new habit."`
	List    cli.ListCmd    `cmd:"" help:"List habits." default:"1"`
	Inc     cli.IncCmd     `cmd:"" help:"Record an occurrence of a habit."`
	Undo    cli.UndoCmd    `cmd:"" help:"Remove the last recorded occurrence of a habit."`
	Rename  cli.RenameCmd  `cmd:"" help:"Rename a habit."`
	Archive cli.ArchiveCmd `cmd:"" help:"Archive or unarchive a habit."`
	Delete  cli.DeleteCmd  `cmd:"" help:"Delete a habit and its entries."`
	Stats   cli.StatsCmd   `cmd:"" help:"Show a habit's counts over a day, week, month or year."`

	Export cli.ExportCmd `cmd:"" help:"Export all habits to a JSON file."`
	Import cli.ImportCmd `cmd:"" help:"Replace all habits with an exported JSON file."`
	Sample cli.SampleCmd `cmd:"" help:"Replace all habits with generated sample data."`

	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage habit backups."`
	ConfigCmd struct {
		Show            cli.ConfigShowCmd            `cmd:"" help:"Show the current configuration." default:"1"`
		Set             cli.ConfigSetCmd             `cmd:"" help:"Change a setting."`
		SetConnection   cli.ConfigSetConnectionCmd   `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		ClearConnection cli.ConfigClearConnectionCmd `cmd:"" help:"Remove the PostgreSQL connection string from the OS keyring."`
	} `cmd:"" name:"config" help:"Manage configuration."`
	DebugCmd cli.DebugCmd `cmd:"" name:"debug" hidden:"" help:"Debug commands for troubleshooting."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track small daily habits and see how often you keep them"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}

	dataDir, err := cfg.ResolvedDataDir()
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, DataDir: dataDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Starting", "command", kctx.Command(), "config", CLI.Config, "storage", cfg.Storage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	appCtx := cli.NewContext(ctx, cfg, CLI.Config)

	err = kctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil {
		logger.Warn("Failed to close storage", "error", closeErr)
	}
	stop()
	errors.Fatal(err)
}

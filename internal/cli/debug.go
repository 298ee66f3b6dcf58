package cli

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/transfer"
)

type DebugCmd struct {
	Path DebugPathCmd `cmd:"" help:"Show config and storage paths."`
	Dump DebugDumpCmd `cmd:"" help:"Dump a habit in export format."`
}

type DebugPathCmd struct{}

func (cmd *DebugPathCmd) Run(ctx *Context) error {
	output := map[string]string{
		"config":  ctx.ConfigPath,
		"storage": ctx.Config.Storage,
	}
	if store, err := ctx.Provider(); err == nil {
		output["path"] = store.GetConfigPath()
	} else {
		output["error"] = err.Error()
	}
	if mgr, err := ctx.BackupManager(); err == nil {
		output["backups"] = mgr.GetBackupDir()
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.println(string(jsonBytes))
	return nil
}

type DebugDumpCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (cmd *DebugDumpCmd) Run(ctx *Context) error {
	ctrl, id, err := resolve(ctx, cmd.Habit)
	if err != nil {
		return err
	}
	h, err := ctrl.Resolve(id)
	if err != nil {
		return err
	}

	data, err := transfer.Marshal(models.Collection{h})
	if err != nil {
		return fmt.Errorf("failed to marshal habit: %w", err)
	}
	ctx.printf("%s", data)
	return nil
}

package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	ctrl, err := ctx.App()
	if err != nil {
		return err
	}
	backupPath, err := ctrl.Backup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.println(success("Backup created: " + filepath.Base(backupPath)))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.println("No backups found.")
		ctx.printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), ctx.Config.MaxBackups)
	tbl := newTable("CREATED", "FILE", "HABITS", "ENTRIES", "SIZE")
	for _, b := range backups {
		habitCount, logCount := "?", "?"
		if info, err := mgr.Describe(b); err == nil {
			habitCount, logCount = strconv.Itoa(info.Habits), strconv.Itoa(info.Logs)
		}
		tbl.AddRow(
			b.Timestamp.Format("2006-01-02 15:04:05"),
			filepath.Base(b.Path),
			habitCount,
			logCount,
			fmt.Sprintf("%.1f KB", float64(b.Size)/1024.0),
		)
	}
	ctx.println(tbl)
	ctx.printf("\nBackup directory: %s\n", mgr.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	ctrl, err := ctx.App()
	if err != nil {
		return err
	}
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backupPath := mgr.Resolve(c.BackupFile)

	ok, err := ctx.confirm(c.Yes,
		"Restore from "+filepath.Base(backupPath)+"?",
		"This replaces your current habits with the backup. A backup of the current habits is created first.")
	if err != nil {
		return err
	}
	if !ok {
		ctx.println("Restore cancelled.")
		return nil
	}

	safety, err := ctrl.Restore(ctx.Ctx(), backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	ctx.println(success("Habits restored successfully!"))
	ctx.printf("Previous habits saved to: %s\n", filepath.Base(safety))
	return nil
}

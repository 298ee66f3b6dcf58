package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/smallwins/internal/storage"
	"github.com/julianstephens/smallwins/internal/validation"
)

type DoctorCmd struct{}

type checkStatus int

const (
	checkOK checkStatus = iota
	checkWarn
	checkFail
	checkSkipped
)

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	report := func(name string, status checkStatus, detail error) {
		switch status {
		case checkOK:
			ctx.printf("%s %s: OK\n", successStyle.Render("✓"), name)
		case checkWarn:
			ctx.printf("%s %s: WARNING\n", warnStyle.Render("⚠"), name)
			ctx.printf("   %v\n", detail)
		case checkFail:
			hasError = true
			ctx.printf("%s %s: FAIL\n", failStyle.Render("❌"), name)
			ctx.printf("   Error: %v\n", detail)
		case checkSkipped:
			ctx.printf("%s %s: SKIPPED (%v)\n", mutedStyle.Render("⊘"), name, detail)
		}
	}
	check := func(name string, err error) {
		if err != nil {
			report(name, checkFail, err)
			return
		}
		report(name, checkOK, nil)
	}

	check("Configuration", ctx.Config.Validate())
	check("Timezone", checkTimezone(ctx))

	storeErr := checkStoreReachable(ctx)
	check("Storage reachable", storeErr)
	if storeErr != nil {
		unreachable := errors.New("storage not reachable")
		report("Schema version", checkSkipped, unreachable)
		report("Data validation", checkSkipped, unreachable)
	} else {
		if err := checkSchemaVersion(ctx); errors.Is(err, errNoSchema) {
			report("Schema version", checkSkipped, err)
		} else {
			check("Schema version", err)
		}
		result, err := checkValidation(ctx)
		switch {
		case err != nil:
			report("Data validation", checkFail, err)
		case len(result.Warnings) > 0:
			report("Data validation", checkWarn, fmt.Errorf("%d warning(s), run 'smallwins validate'", len(result.Warnings)))
		default:
			report("Data validation", checkOK, nil)
		}
	}

	if err := checkBackupsPresent(ctx); err != nil {
		report("Backups present", checkWarn, err)
	} else {
		report("Backups present", checkOK, nil)
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.println("All diagnostics passed!")
	return nil
}

var errNoSchema = errors.New("storage has no schema")

func checkTimezone(ctx *Context) error {
	loc, err := ctx.Config.Location()
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkStoreReachable(ctx *Context) error {
	_, err := ctx.App()
	return err
}

func checkSchemaVersion(ctx *Context) error {
	reporter, ok := ctx.Store.(storage.SchemaReporter)
	if !ok {
		return errNoSchema
	}
	current, latest, err := reporter.SchemaVersion(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind latest %d, run 'smallwins migrate'", current, latest)
	}
	return nil
}

func checkValidation(ctx *Context) (validation.Result, error) {
	ctrl, err := ctx.App()
	if err != nil {
		return validation.Result{}, err
	}
	result := validation.Collection(ctrl.Collection())
	if result.HasErrors() {
		return result, fmt.Errorf("%d validation error(s), run 'smallwins validate'", len(result.Errors))
	}
	return result, nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s, run 'smallwins backup create'", mgr.GetBackupDir())
	}
	return nil
}

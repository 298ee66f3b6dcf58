package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/smallwins/internal/app"
	"github.com/julianstephens/smallwins/internal/backup"
	"github.com/julianstephens/smallwins/internal/calendar"
	"github.com/julianstephens/smallwins/internal/config"
	"github.com/julianstephens/smallwins/internal/habits"
	"github.com/julianstephens/smallwins/internal/logger"
	"github.com/julianstephens/smallwins/internal/storage"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(title, description string) (bool, error)

// Context is shared by every command. The store and controller are created
// on first use so that commands which never touch habit data (config,
// debug path) work before storage is reachable.
type Context struct {
	Config     *config.Config
	ConfigPath string

	// Optional overrides, mostly for tests
	Store   storage.Provider
	Backups *backup.Manager
	Clock   calendar.Clock
	IDs     habits.IDGenerator
	Out     io.Writer
	Confirm ConfirmFunc

	base context.Context
	app  *app.Controller
}

func NewContext(base context.Context, cfg *config.Config, configPath string) *Context {
	return &Context{
		Config:     cfg,
		ConfigPath: configPath,
		Out:        os.Stdout,
		Confirm:    huhConfirm,
		base:       base,
	}
}

// Ctx returns the context commands pass to blocking operations.
func (c *Context) Ctx() context.Context {
	if c.base == nil {
		return context.Background()
	}
	return c.base
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// Provider returns the configured store without loading it.
func (c *Context) Provider() (storage.Provider, error) {
	if c.Store != nil {
		return c.Store, nil
	}
	store, err := storage.New(c.Config)
	if err != nil {
		return nil, err
	}
	c.Store = store
	return store, nil
}

// BackupManager returns the snapshot manager for the configured data
// directory.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if c.Backups != nil {
		return c.Backups, nil
	}
	dataDir, err := c.Config.ResolvedDataDir()
	if err != nil {
		return nil, err
	}
	c.Backups = backup.NewManager(dataDir, c.Config.MaxBackups, c.Clock)
	return c.Backups, nil
}

// Calendar returns the calendar for the configured timezone.
func (c *Context) Calendar() (calendar.Calendar, error) {
	loc, err := c.Config.Location()
	if err != nil {
		return nil, err
	}
	return calendar.NewLocal(loc), nil
}

// App opens the controller, loading the persisted collection on first use.
func (c *Context) App() (*app.Controller, error) {
	if c.app != nil {
		return c.app, nil
	}

	store, err := c.Provider()
	if err != nil {
		return nil, err
	}
	backups, err := c.BackupManager()
	if err != nil {
		return nil, err
	}
	cal, err := c.Calendar()
	if err != nil {
		return nil, err
	}

	ctrl := app.New(app.Options{
		Store:    store,
		Backups:  backups,
		Clock:    c.Clock,
		Calendar: cal,
		IDs:      c.IDs,
	})
	if err := ctrl.Open(c.Ctx()); err != nil {
		return nil, err
	}
	c.app = ctrl
	return ctrl, nil
}

// PerformAutomaticBackup snapshots the current habits. Failures are logged
// and otherwise ignored.
func (c *Context) PerformAutomaticBackup() {
	if c.app == nil || len(c.app.Collection()) == 0 {
		return
	}
	if _, err := c.app.Backup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Close releases the store if one was opened.
func (c *Context) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// confirm returns true without asking when yes is set.
func (c *Context) confirm(yes bool, title, description string) (bool, error) {
	if yes {
		return true, nil
	}
	if c.Confirm == nil {
		return false, fmt.Errorf("confirmation required, pass --yes")
	}
	ok, err := c.Confirm(title, description)
	if err != nil {
		return false, err
	}
	if !ok {
		logger.Debug("Action cancelled by user", "prompt", title)
	}
	return ok, nil
}

func huhConfirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// resolve finds a habit by id or exact name.
func resolve(ctx *Context, idOrName string) (*app.Controller, string, error) {
	ctrl, err := ctx.App()
	if err != nil {
		return nil, "", err
	}
	h, err := ctrl.Resolve(strings.TrimSpace(idOrName))
	if err != nil {
		return nil, "", err
	}
	return ctrl, h.ID, nil
}

// Package app holds the application state and serializes every change to
// it: actions are applied by the habit engine and persisted before the next
// one is accepted.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/julianstephens/smallwins/internal/aggregate"
	"github.com/julianstephens/smallwins/internal/backup"
	"github.com/julianstephens/smallwins/internal/calendar"
	"github.com/julianstephens/smallwins/internal/habits"
	"github.com/julianstephens/smallwins/internal/logger"
	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/navigator"
	"github.com/julianstephens/smallwins/internal/sample"
	"github.com/julianstephens/smallwins/internal/storage"
	"github.com/julianstephens/smallwins/internal/transfer"
)

// Options configures a Controller. Store is required; nil Backups disables
// safety snapshots, and the remaining fields have system defaults.
type Options struct {
	Store    storage.Provider
	Backups  *backup.Manager
	Clock    calendar.Clock
	Calendar calendar.Calendar
	IDs      habits.IDGenerator
}

// Controller owns the current collection.
type Controller struct {
	mu      sync.Mutex
	engine  *habits.Engine
	store   storage.Provider
	backups *backup.Manager
	clock   calendar.Clock
	cal     calendar.Calendar
	habits  models.Collection
	loaded  bool
}

func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = calendar.SystemClock{}
	}
	if opts.Calendar == nil {
		opts.Calendar = calendar.NewLocal(nil)
	}
	return &Controller{
		engine:  habits.NewEngine(opts.Clock, opts.IDs),
		store:   opts.Store,
		backups: opts.Backups,
		clock:   opts.Clock,
		cal:     opts.Calendar,
		habits:  models.Collection{},
	}
}

// Open loads the persisted collection.
func (c *Controller) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Load(ctx); err != nil {
		return err
	}
	loaded, err := c.store.LoadHabits(ctx)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	c.habits = loaded
	c.loaded = true
	logger.Debug("Loaded habits", "count", len(loaded), "store", c.store.GetConfigPath())
	return nil
}

func (c *Controller) Close() error {
	return c.store.Close()
}

func (c *Controller) Calendar() calendar.Calendar { return c.cal }

func (c *Controller) Now() time.Time { return c.clock.Now() }

// Collection returns a copy of the current collection.
func (c *Controller) Collection() models.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.habits.Clone()
}

// Dispatch applies a, persists the result and makes it current. If the
// transition or the save fails the current collection is unchanged.
func (c *Controller) Dispatch(ctx context.Context, a habits.Action) (models.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatch(ctx, a)
}

func (c *Controller) dispatch(ctx context.Context, a habits.Action) (models.Collection, error) {
	next, err := c.transition(a)
	if err != nil {
		return c.habits.Clone(), err
	}
	if err := c.commit(ctx, next); err != nil {
		logger.Error("Failed to persist habits", "action", a.Kind(), "error", err)
		return c.habits.Clone(), err
	}

	if id, ok := habits.TargetID(a); ok {
		logger.Debug("Applied action", "action", a.Kind(), "habit", id)
	} else {
		logger.Debug("Applied action", "action", a.Kind(), "count", len(next))
	}
	return next.Clone(), nil
}

// DispatchAll applies actions in order and persists once. If any action is
// rejected none of them take effect.
func (c *Controller) DispatchAll(ctx context.Context, actions ...habits.Action) (models.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return nil, storage.ErrNotInitialized
	}
	next, err := c.engine.ApplyAll(c.habits, actions...)
	if err != nil {
		logger.Warn("Actions rejected", "count", len(actions), "error", err)
		return c.habits.Clone(), err
	}
	if err := c.commit(ctx, next); err != nil {
		logger.Error("Failed to persist habits", "count", len(actions), "error", err)
		return c.habits.Clone(), err
	}
	logger.Debug("Applied actions", "count", len(actions))
	return next.Clone(), nil
}

// transition computes the collection a would produce without touching the
// current state.
func (c *Controller) transition(a habits.Action) (models.Collection, error) {
	if !c.loaded {
		return nil, storage.ErrNotInitialized
	}
	next, err := c.engine.Apply(c.habits, a)
	if err != nil {
		logger.Warn("Action rejected", "action", a.Kind(), "error", err)
		return nil, err
	}
	return next, nil
}

// commit saves next and makes it current.
func (c *Controller) commit(ctx context.Context, next models.Collection) error {
	if err := c.store.SaveHabits(ctx, next); err != nil {
		return fmt.Errorf("failed to save habits: %w", err)
	}
	c.habits = next
	return nil
}

// Resolve finds a habit by id, falling back to an exact name match.
func (c *Controller) Resolve(idOrName string) (models.Habit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.habits.Get(idOrName); ok {
		return h.Clone(), nil
	}
	if h, ok := c.habits.FindByName(idOrName); ok {
		return h.Clone(), nil
	}
	return models.Habit{}, &habits.NotFoundError{HabitID: idOrName}
}

// Stats is the aggregation of one habit over one period window.
type Stats struct {
	Habit   models.Habit
	Period  calendar.PeriodType
	Window  calendar.Window
	Title   string
	Buckets []aggregate.Bucket
	Summary aggregate.Summary
}

// Stats aggregates the logs of the habit identified by idOrName over the
// window of period p containing at, moved by offset periods.
func (c *Controller) Stats(idOrName string, p calendar.PeriodType, at time.Time, offset int) (Stats, error) {
	h, err := c.Resolve(idOrName)
	if err != nil {
		return Stats{}, err
	}

	nav := navigator.New(c.cal, at)
	nav.SetPeriodType(p)
	nav.Seek(offset)

	buckets := nav.Aggregate(h.Timestamps())
	return Stats{
		Habit:   h,
		Period:  nav.Period(),
		Window:  nav.Window(),
		Title:   nav.Title(),
		Buckets: buckets,
		Summary: aggregate.Summarize(buckets),
	}, nil
}

// Export writes the collection to a new file in dir and returns its path.
func (c *Controller) Export(dir string) (string, error) {
	snapshot := c.Collection()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, transfer.ExportFileName(c.clock.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := transfer.Encode(f, snapshot); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	logger.Info("Exported habits", "path", path, "count", len(snapshot))
	return path, nil
}

// Import replaces the collection with the document read from r. Malformed
// documents and collections the engine rejects leave the state untouched.
func (c *Controller) Import(ctx context.Context, r io.Reader) (models.Collection, error) {
	incoming, err := transfer.Decode(r)
	if err != nil {
		return nil, err
	}
	return c.replace(ctx, incoming, "import")
}

// LoadSample replaces the collection with generated sample data.
func (c *Controller) LoadSample(ctx context.Context, seed uint64) (models.Collection, error) {
	return c.replace(ctx, sample.Generate(c.clock.Now(), c.cal.Location(), seed), "sample")
}

// Restore replaces the collection with a backup snapshot. It returns the
// path of the safety snapshot taken of the previous state. A snapshot the
// engine rejects leaves both the state and the backup directory untouched.
func (c *Controller) Restore(ctx context.Context, nameOrPath string) (string, error) {
	if c.backups == nil {
		return "", errors.New("backups are not configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var next models.Collection
	accept := func(restored models.Collection) error {
		var err error
		next, err = c.transition(habits.SetHabits{Habits: restored})
		return err
	}
	_, safety, err := c.backups.PrepareRestore(c.backups.Resolve(nameOrPath), c.habits, accept)
	if err != nil {
		return "", err
	}
	if err := c.commit(ctx, next); err != nil {
		return "", err
	}
	logger.Info("Restored habits", "count", len(next), "safety", safety)
	return safety, nil
}

// Backup snapshots the current collection.
func (c *Controller) Backup() (string, error) {
	if c.backups == nil {
		return "", errors.New("backups are not configured")
	}
	return c.backups.CreateBackup(c.Collection())
}

// replace installs incoming wholesale. The current state is snapshotted,
// when backups are configured, only once the engine has accepted incoming.
func (c *Controller) replace(ctx context.Context, incoming models.Collection, reason string) (models.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.transition(habits.SetHabits{Habits: incoming})
	if err != nil {
		return nil, err
	}
	if c.backups != nil && len(c.habits) > 0 {
		if _, err := c.backups.CreateBackup(c.habits); err != nil {
			return nil, fmt.Errorf("failed to backup habits before %s: %w", reason, err)
		}
	}
	if err := c.commit(ctx, next); err != nil {
		return nil, err
	}
	logger.Debug("Replaced habits", "reason", reason, "count", len(next))
	return next.Clone(), nil
}

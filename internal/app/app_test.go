package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/smallwins/internal/backup"
	"github.com/julianstephens/smallwins/internal/calendar"
	"github.com/julianstephens/smallwins/internal/habits"
	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/storage"
	"github.com/julianstephens/smallwins/internal/testutil"
)

type testEnv struct {
	ctrl    *Controller
	clock   *testutil.StubClock
	store   *storage.JSONStore
	backups *backup.Manager
	dir     string
}

func setupController(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	store := storage.NewJSONStore(filepath.Join(dir, "habits.json"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("store Init() error = %v", err)
	}
	clock := testutil.FixedClock()
	backups := backup.NewManager(dir, 5, clock)

	ctrl := New(Options{
		Store:    store,
		Backups:  backups,
		Clock:    clock,
		Calendar: calendar.NewLocal(time.UTC),
		IDs:      testutil.NewStubIDGenerator(),
	})
	if err := ctrl.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { ctrl.Close() })
	return &testEnv{ctrl: ctrl, clock: clock, store: store, backups: backups, dir: dir}
}

func mustDispatch(t *testing.T, ctrl *Controller, a habits.Action) models.Collection {
	t.Helper()
	c, err := ctrl.Dispatch(context.Background(), a)
	if err != nil {
		t.Fatalf("Dispatch(%s) error = %v", a.Kind(), err)
	}
	return c
}

func TestDrinkWaterScenario(t *testing.T) {
	env := setupController(t)
	ctrl := env.ctrl

	mustDispatch(t, ctrl, habits.AddHabit{Name: "  Drink Water "})
	h, err := ctrl.Resolve("Drink Water")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	env.clock.Set(testutil.MustTime("2024-01-01T08:00:00Z"))
	mustDispatch(t, ctrl, habits.IncrementHabit{HabitID: h.ID})
	env.clock.Set(testutil.MustTime("2024-01-01T09:00:00Z"))
	mustDispatch(t, ctrl, habits.IncrementHabit{HabitID: h.ID})
	env.clock.Set(testutil.MustTime("2024-01-02T08:00:00Z"))
	mustDispatch(t, ctrl, habits.IncrementHabit{HabitID: h.ID})

	stats, err := ctrl.Stats(h.ID, calendar.Day, testutil.MustTime("2024-01-01T12:00:00Z"), 0)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if len(stats.Buckets) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(stats.Buckets))
	}
	for i, b := range stats.Buckets {
		want := 0
		if b.Label == "8" || b.Label == "9" {
			want = 1
		}
		if b.Count != want {
			t.Errorf("bucket %d (%s) = %d, want %d", i, b.Label, b.Count, want)
		}
	}
	if stats.Summary.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Summary.Total)
	}
	if stats.Title != "January 1, 2024" {
		t.Errorf("title = %q", stats.Title)
	}

	next, err := ctrl.Stats("Drink Water", calendar.Day, testutil.MustTime("2024-01-01T12:00:00Z"), 1)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if next.Summary.Total != 1 || next.Buckets[8].Count != 1 {
		t.Errorf("next day stats = %+v", next.Summary)
	}
}

func TestDispatchPersists(t *testing.T) {
	env := setupController(t)
	ctx := context.Background()

	mustDispatch(t, env.ctrl, habits.AddHabit{Name: "Meditate"})
	mustDispatch(t, env.ctrl, habits.IncrementHabit{HabitID: "id-1"})

	reopened := New(Options{Store: storage.NewJSONStore(env.store.GetConfigPath())})
	if err := reopened.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	c := reopened.Collection()
	if len(c) != 1 || c[0].Name != "Meditate" || len(c[0].Logs) != 1 {
		t.Errorf("persisted collection = %+v", c)
	}
}

func TestDispatchRejectedLeavesState(t *testing.T) {
	env := setupController(t)
	mustDispatch(t, env.ctrl, habits.AddHabit{Name: "Run"})
	before := env.ctrl.Collection()

	tests := []struct {
		name   string
		action habits.Action
		target error
	}{
		{"empty name", habits.AddHabit{Name: "   "}, habits.ErrValidation},
		{"unknown habit", habits.IncrementHabit{HabitID: "nope"}, habits.ErrNotFound},
		{"blank rename", habits.RenameHabit{HabitID: "id-1", NewName: ""}, habits.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.ctrl.Dispatch(context.Background(), tt.action)
			if !errors.Is(err, tt.target) {
				t.Fatalf("Dispatch() error = %v, want %v", err, tt.target)
			}
			if len(got) != len(before) || got[0].Name != before[0].Name {
				t.Errorf("Dispatch() returned %+v, want unchanged", got)
			}
		})
	}

	after := env.ctrl.Collection()
	if len(after) != 1 || after[0].Name != "Run" {
		t.Errorf("collection changed after rejected actions: %+v", after)
	}
}

type failingStore struct {
	storage.Provider
	fail bool
}

func (s *failingStore) SaveHabits(ctx context.Context, c models.Collection) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.Provider.SaveHabits(ctx, c)
}

func TestDispatchSaveFailureLeavesState(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewJSONStore(filepath.Join(t.TempDir(), "habits.json"))
	if err := inner.Init(ctx); err != nil {
		t.Fatal(err)
	}
	store := &failingStore{Provider: inner}
	ctrl := New(Options{Store: store, Clock: testutil.FixedClock(), IDs: testutil.NewStubIDGenerator()})
	if err := ctrl.Open(ctx); err != nil {
		t.Fatal(err)
	}

	mustDispatch(t, ctrl, habits.AddHabit{Name: "Read"})
	store.fail = true
	if _, err := ctrl.Dispatch(ctx, habits.IncrementHabit{HabitID: "id-1"}); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Dispatch() error = %v, want save failure", err)
	}
	if c := ctrl.Collection(); len(c[0].Logs) != 0 {
		t.Errorf("in-memory state advanced despite failed save: %+v", c)
	}
}

func TestDispatchBeforeOpen(t *testing.T) {
	ctrl := New(Options{Store: storage.NewJSONStore(filepath.Join(t.TempDir(), "habits.json"))})
	if _, err := ctrl.Dispatch(context.Background(), habits.AddHabit{Name: "x"}); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("Dispatch() error = %v, want ErrNotInitialized", err)
	}
}

func TestConcurrentDispatchSerializes(t *testing.T) {
	env := setupController(t)
	mustDispatch(t, env.ctrl, habits.AddHabit{Name: "Pushups"})

	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.ctrl.Dispatch(context.Background(), habits.IncrementHabit{HabitID: "id-1"}); err != nil {
				t.Errorf("Dispatch() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(env.ctrl.Collection()[0].Logs); got != 25 {
		t.Errorf("expected 25 logs, got %d", got)
	}
}

func TestResolve(t *testing.T) {
	env := setupController(t)
	mustDispatch(t, env.ctrl, habits.AddHabit{Name: "Journal"})

	byID, err := env.ctrl.Resolve("id-1")
	if err != nil || byID.Name != "Journal" {
		t.Errorf("Resolve(id) = %+v, %v", byID, err)
	}
	if _, err := env.ctrl.Resolve("journal"); !errors.Is(err, habits.ErrNotFound) {
		t.Errorf("Resolve() is not exact: error = %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	env := setupController(t)
	ctx := context.Background()
	mustDispatch(t, env.ctrl, habits.AddHabit{Name: "Stretch"})
	mustDispatch(t, env.ctrl, habits.IncrementHabit{HabitID: "id-1"})
	mustDispatch(t, env.ctrl, habits.ToggleArchive{HabitID: "id-1"})

	path, err := env.ctrl.Export(filepath.Join(env.dir, "exports"))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if want := "habitsbuilderdata-2024-01-01T08-00-00.000Z.json"; filepath.Base(path) != want {
		t.Errorf("export file = %s, want %s", filepath.Base(path), want)
	}

	mustDispatch(t, env.ctrl, habits.DeleteHabit{HabitID: "id-1"})
	if len(env.ctrl.Collection()) != 0 {
		t.Fatal("habit not deleted")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := env.ctrl.Import(ctx, f); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	c := env.ctrl.Collection()
	if len(c) != 1 || c[0].Name != "Stretch" || !c[0].Archived || len(c[0].Logs) != 1 {
		t.Errorf("imported collection = %+v", c)
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	env := setupController(t)
	mustDispatch(t, env.ctrl, habits.AddHabit{Name: "Keep me"})

	docs := []string{
		`{"habits": []}`,
		`[{"id": "a", "name": "x"}]`,
		`[{"id": "a", "name": "x", "createdTime": "2024-01-01T00:00:00Z", "archived": false, "logs": []},
		  {"id": "a", "name": "y", "createdTime": "2024-01-01T00:00:00Z", "archived": false, "logs": []}]`,
	}
	for _, doc := range docs {
		_, err := env.ctrl.Import(context.Background(), strings.NewReader(doc))
		if !errors.Is(err, habits.ErrValidation) {
			t.Errorf("Import(%s) error = %v, want validation error", doc, err)
		}
	}
	if c := env.ctrl.Collection(); len(c) != 1 || c[0].Name != "Keep me" {
		t.Errorf("collection changed by rejected import: %+v", c)
	}
	// A rejected import must not write or rotate snapshots
	backups, err := env.backups.ListBackups()
	if err != nil || len(backups) != 0 {
		t.Errorf("rejected imports left backups: %v, %v", backups, err)
	}
}

func TestLoadSampleTakesBackup(t *testing.T) {
	env := setupController(t)
	mustDispatch(t, env.ctrl, habits.AddHabit{Name: "Mine"})

	c, err := env.ctrl.LoadSample(context.Background(), 1)
	if err != nil {
		t.Fatalf("LoadSample() error = %v", err)
	}
	if len(c) != 8 || c[0].Name != "Drink Water" {
		t.Errorf("sample collection = %d habits", len(c))
	}

	backups, err := env.backups.ListBackups()
	if err != nil || len(backups) != 1 {
		t.Fatalf("expected one safety backup, got %v, %v", backups, err)
	}
	saved, err := env.backups.ReadBackup(backups[0].Path)
	if err != nil || len(saved) != 1 || saved[0].Name != "Mine" {
		t.Errorf("safety backup = %+v, %v", saved, err)
	}
}

func TestBackupAndRestore(t *testing.T) {
	env := setupController(t)
	ctx := context.Background()
	mustDispatch(t, env.ctrl, habits.AddHabit{Name: "Original"})

	path, err := env.ctrl.Backup()
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	env.clock.Advance(time.Hour)
	mustDispatch(t, env.ctrl, habits.RenameHabit{HabitID: "id-1", NewName: "Changed"})

	safety, err := env.ctrl.Restore(ctx, filepath.Base(path))
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if c := env.ctrl.Collection(); c[0].Name != "Original" {
		t.Errorf("restored name = %q, want Original", c[0].Name)
	}
	saved, err := env.backups.ReadBackup(safety)
	if err != nil || saved[0].Name != "Changed" {
		t.Errorf("safety backup = %+v, %v", saved, err)
	}
}

func TestRestoreRejectedSnapshot(t *testing.T) {
	env := setupController(t)
	mustDispatch(t, env.ctrl, habits.AddHabit{Name: "Keep me"})

	bad := filepath.Join(t.TempDir(), "duplicate.json")
	doc := `[{"id": "a", "name": "x", "createdTime": "2024-01-01T00:00:00Z", "archived": false, "logs": []},
	  {"id": "a", "name": "y", "createdTime": "2024-01-01T00:00:00Z", "archived": false, "logs": []}]`
	if err := os.WriteFile(bad, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := env.ctrl.Restore(context.Background(), bad); !errors.Is(err, habits.ErrValidation) {
		t.Fatalf("Restore() error = %v, want validation error", err)
	}
	if c := env.ctrl.Collection(); len(c) != 1 || c[0].Name != "Keep me" {
		t.Errorf("collection changed by rejected restore: %+v", c)
	}
	backups, err := env.backups.ListBackups()
	if err != nil || len(backups) != 0 {
		t.Errorf("rejected restore left a safety backup: %v, %v", backups, err)
	}
}

func TestDispatchAllIsAtomic(t *testing.T) {
	env := setupController(t)
	ctx := context.Background()
	mustDispatch(t, env.ctrl, habits.AddHabit{Name: "Push-ups"})

	c, err := env.ctrl.DispatchAll(ctx,
		habits.IncrementHabit{HabitID: "id-1"},
		habits.IncrementHabit{HabitID: "id-1"},
	)
	if err != nil {
		t.Fatalf("DispatchAll() error = %v", err)
	}
	if len(c[0].Logs) != 2 {
		t.Errorf("logs = %d, want 2", len(c[0].Logs))
	}

	_, err = env.ctrl.DispatchAll(ctx,
		habits.IncrementHabit{HabitID: "id-1"},
		habits.IncrementHabit{HabitID: "missing"},
	)
	if !errors.Is(err, habits.ErrNotFound) {
		t.Fatalf("DispatchAll() error = %v, want ErrNotFound", err)
	}
	if got := env.ctrl.Collection(); len(got[0].Logs) != 2 {
		t.Errorf("partial batch applied: %d logs", len(got[0].Logs))
	}
	stored, err := env.store.LoadHabits(ctx)
	if err != nil || len(stored[0].Logs) != 2 {
		t.Errorf("stored logs = %+v, %v", stored, err)
	}
}

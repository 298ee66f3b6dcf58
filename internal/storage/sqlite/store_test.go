package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/storage/sqldb"
	"github.com/julianstephens/smallwins/internal/testutil"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "data", "smallwins.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInitIsIdempotent(t *testing.T) {
	s := setupStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}

	var version int
	if err := s.GetDB().QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("schema_version query failed: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}
}

func TestLoadBeforeInit(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := s.Load(context.Background()); !errors.Is(err, sqldb.ErrNotInitialized) {
		t.Errorf("Load() error = %v, want ErrNotInitialized", err)
	}
	if _, err := s.LoadHabits(context.Background()); !errors.Is(err, sqldb.ErrNotInitialized) {
		t.Errorf("LoadHabits() error = %v, want ErrNotInitialized", err)
	}
}

func TestEmptyDatabaseLoadsEmptyCollection(t *testing.T) {
	s := setupStore(t)
	c, err := s.LoadHabits(context.Background())
	if err != nil {
		t.Fatalf("LoadHabits() error = %v", err)
	}
	if c == nil || len(c) != 0 {
		t.Errorf("LoadHabits() = %#v, want empty collection", c)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	c := testutil.SampleCollection()
	c[1].Archived = true
	// duplicate timestamps and ms precision must survive
	dup := time.Date(2024, time.January, 3, 10, 0, 0, 123000000, time.UTC)
	c[1].Logs = []models.HabitLog{{Time: dup}, {Time: dup}}

	if err := s.SaveHabits(ctx, c); err != nil {
		t.Fatalf("SaveHabits() error = %v", err)
	}

	// reopen from disk
	path := s.GetConfigPath()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	reopened := NewStore(path)
	if err := reopened.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadHabits(ctx)
	if err != nil {
		t.Fatalf("LoadHabits() error = %v", err)
	}
	assertCollectionsEqual(t, got, c)
}

func TestSaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	if err := s.SaveHabits(ctx, testutil.SampleCollection()); err != nil {
		t.Fatalf("SaveHabits() error = %v", err)
	}
	// reorder and drop a habit
	next := models.Collection{testutil.SampleCollection()[1]}
	if err := s.SaveHabits(ctx, next); err != nil {
		t.Fatalf("SaveHabits() error = %v", err)
	}

	got, err := s.LoadHabits(ctx)
	if err != nil {
		t.Fatalf("LoadHabits() error = %v", err)
	}
	assertCollectionsEqual(t, got, next)

	var logs int
	if err := s.GetDB().QueryRow("SELECT COUNT(*) FROM habit_logs").Scan(&logs); err != nil {
		t.Fatal(err)
	}
	if logs != 0 {
		t.Errorf("stale logs left behind: %d", logs)
	}
}

func TestSavePreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	c := models.Collection{
		testutil.NewHabit("z", "Zebra", testutil.MustTime("2024-01-01T00:00:00Z")),
		testutil.NewHabit("a", "Apple", testutil.MustTime("2023-01-01T00:00:00Z")),
		testutil.NewHabit("m", "Mango", testutil.MustTime("2025-01-01T00:00:00Z")),
	}
	if err := s.SaveHabits(ctx, c); err != nil {
		t.Fatalf("SaveHabits() error = %v", err)
	}
	got, err := s.LoadHabits(ctx)
	if err != nil {
		t.Fatalf("LoadHabits() error = %v", err)
	}
	for i := range c {
		if got[i].ID != c[i].ID {
			t.Errorf("habit %d = %s, want %s", i, got[i].ID, c[i].ID)
		}
	}
}

func TestSaveDuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	original := testutil.SampleCollection()
	if err := s.SaveHabits(ctx, original); err != nil {
		t.Fatalf("SaveHabits() error = %v", err)
	}

	bad := models.Collection{
		testutil.NewHabit("x", "One", testutil.MustTime("2024-01-01T00:00:00Z")),
		testutil.NewHabit("x", "Two", testutil.MustTime("2024-01-01T00:00:00Z")),
	}
	if err := s.SaveHabits(ctx, bad); err == nil {
		t.Fatal("SaveHabits() with duplicate ids should fail")
	}

	got, err := s.LoadHabits(ctx)
	if err != nil {
		t.Fatalf("LoadHabits() error = %v", err)
	}
	assertCollectionsEqual(t, got, original)
}

func assertCollectionsEqual(t *testing.T, got, want models.Collection) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d habits, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.ID != w.ID || g.Name != w.Name || g.Archived != w.Archived || !g.CreatedTime.Equal(w.CreatedTime) {
			t.Errorf("habit %d = %+v, want %+v", i, g, w)
		}
		if len(g.Logs) != len(w.Logs) {
			t.Errorf("habit %s has %d logs, want %d", w.ID, len(g.Logs), len(w.Logs))
			continue
		}
		for j := range w.Logs {
			if !g.Logs[j].Time.Equal(w.Logs[j].Time) {
				t.Errorf("habit %s log %d = %v, want %v", w.ID, j, g.Logs[j].Time, w.Logs[j].Time)
			}
		}
	}
}

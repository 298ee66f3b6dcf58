package habits

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/testutil"
)

func setupEngine(t *testing.T) (*Engine, *testutil.StubClock) {
	t.Helper()
	clock := testutil.FixedClock()
	return NewEngine(clock, testutil.NewStubIDGenerator()), clock
}

func TestAddHabit(t *testing.T) {
	engine, clock := setupEngine(t)
	before := testutil.SampleCollection()
	snapshot := before.Clone()

	after, err := engine.Apply(before, AddHabit{Name: "  Do Planks  "})
	if err != nil {
		t.Fatalf("Apply(AddHabit) failed: %v", err)
	}

	if len(after) != len(before)+1 {
		t.Fatalf("expected %d habits, got %d", len(before)+1, len(after))
	}
	added := after[len(after)-1]
	if added.Name != "Do Planks" {
		t.Errorf("expected trimmed name %q, got %q", "Do Planks", added.Name)
	}
	if added.Archived {
		t.Error("new habit should not be archived")
	}
	if added.Logs == nil || len(added.Logs) != 0 {
		t.Errorf("expected empty non-nil logs, got %#v", added.Logs)
	}
	if added.ID != "id-1" {
		t.Errorf("expected generated id %q, got %q", "id-1", added.ID)
	}
	if !added.CreatedTime.Equal(clock.Now()) {
		t.Errorf("expected created time %v, got %v", clock.Now(), added.CreatedTime)
	}
	if !reflect.DeepEqual(before, snapshot) {
		t.Error("Apply mutated its input collection")
	}
}

func TestAddHabitRejectsEmptyName(t *testing.T) {
	engine, _ := setupEngine(t)
	before := testutil.SampleCollection()

	for _, name := range []string{"", "   ", "\t\n"} {
		after, err := engine.Apply(before, AddHabit{Name: name})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("AddHabit(%q) error = %v, want ErrValidation", name, err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "name" {
			t.Errorf("AddHabit(%q) error = %#v, want *ValidationError on name", name, err)
		}
		if !reflect.DeepEqual(after, before) {
			t.Errorf("AddHabit(%q) changed the collection on failure", name)
		}
	}
}

func TestAddHabitIDsAreUnique(t *testing.T) {
	engine := NewEngine(testutil.FixedClock(), nil)

	var c models.Collection
	var err error
	for range 50 {
		c, err = engine.Apply(c, AddHabit{Name: "habit"})
		if err != nil {
			t.Fatalf("Apply(AddHabit) failed: %v", err)
		}
	}

	seen := make(map[string]bool)
	for _, h := range c {
		if seen[h.ID] {
			t.Fatalf("duplicate id generated: %s", h.ID)
		}
		seen[h.ID] = true
	}
}

func TestAddHabitIDCollision(t *testing.T) {
	engine := NewEngine(testutil.FixedClock(), testutil.FixedIDGenerator("h1"))
	before := testutil.SampleCollection()

	after, err := engine.Apply(before, AddHabit{Name: "Journal"})
	if err == nil {
		t.Fatal("expected error when every generated id collides")
	}
	if len(after) != len(before) {
		t.Errorf("collection changed on failure: %d habits", len(after))
	}
}

func TestIncrementThenDeleteLastEntryRoundTrip(t *testing.T) {
	engine, clock := setupEngine(t)
	before := testutil.SampleCollection()

	clock.Set(testutil.MustTime("2024-03-05T12:00:00Z"))
	incremented, err := engine.Apply(before, IncrementHabit{HabitID: "h1"})
	if err != nil {
		t.Fatalf("Apply(IncrementHabit) failed: %v", err)
	}

	logs := incremented[0].Logs
	if len(logs) != len(before[0].Logs)+1 {
		t.Fatalf("expected %d logs, got %d", len(before[0].Logs)+1, len(logs))
	}
	if last := logs[len(logs)-1]; !last.Time.Equal(clock.Now()) {
		t.Errorf("expected appended log at %v, got %v", clock.Now(), last.Time)
	}

	restored, err := engine.Apply(incremented, DeleteLastEntry{HabitID: "h1"})
	if err != nil {
		t.Fatalf("Apply(DeleteLastEntry) failed: %v", err)
	}
	if !reflect.DeepEqual(restored, before) {
		t.Errorf("round trip mismatch:\n got  %v\n want %v", restored, before)
	}
}

func TestDeleteLastEntryRemovesLastAppendedNotLatest(t *testing.T) {
	engine, _ := setupEngine(t)
	before := testutil.SampleCollection()

	// h1 logs are 09:00, 08:00, Jan 2 08:00; the last appended is Jan 2
	after, err := engine.Apply(before, DeleteLastEntry{HabitID: "h1"})
	if err != nil {
		t.Fatalf("Apply(DeleteLastEntry) failed: %v", err)
	}
	want := before[0].Logs[:2]
	if !reflect.DeepEqual(after[0].Logs, want) {
		t.Errorf("logs = %v, want %v", after[0].Logs, want)
	}
	if len(before[0].Logs) != 3 {
		t.Error("input logs were truncated")
	}
}

func TestDeleteLastEntryOnEmptyLogsIsNoop(t *testing.T) {
	engine, _ := setupEngine(t)
	before := testutil.SampleCollection()

	after, err := engine.Apply(before, DeleteLastEntry{HabitID: "h2"})
	if err != nil {
		t.Fatalf("Apply(DeleteLastEntry) on empty logs returned error: %v", err)
	}
	if !reflect.DeepEqual(after, before) {
		t.Errorf("collection changed:\n got  %v\n want %v", after, before)
	}
}

func TestDeleteLastEntryDoesNotAliasInput(t *testing.T) {
	engine, clock := setupEngine(t)
	before := testutil.SampleCollection()

	trimmed, err := engine.Apply(before, DeleteLastEntry{HabitID: "h1"})
	if err != nil {
		t.Fatal(err)
	}
	clock.Set(testutil.MustTime("2030-01-01T00:00:00Z"))
	if _, err := engine.Apply(trimmed, IncrementHabit{HabitID: "h1"}); err != nil {
		t.Fatal(err)
	}

	if got := before[0].Logs[2].Time; !got.Equal(testutil.MustTime("2024-01-02T08:00:00Z")) {
		t.Errorf("original log overwritten through shared backing array: %v", got)
	}
}

func TestRenameHabit(t *testing.T) {
	engine, _ := setupEngine(t)
	before := testutil.SampleCollection()

	after, err := engine.Apply(before, RenameHabit{HabitID: "h2", NewName: " Breathe "})
	if err != nil {
		t.Fatalf("Apply(RenameHabit) failed: %v", err)
	}
	if after[1].Name != "Breathe" {
		t.Errorf("expected name %q, got %q", "Breathe", after[1].Name)
	}
	if after[1].ID != "h2" {
		t.Errorf("rename changed id to %q", after[1].ID)
	}

	if _, err := engine.Apply(before, RenameHabit{HabitID: "h2", NewName: "  "}); !errors.Is(err, ErrValidation) {
		t.Errorf("RenameHabit with blank name error = %v, want ErrValidation", err)
	}
}

func TestToggleArchiveTwice(t *testing.T) {
	engine, _ := setupEngine(t)
	before := testutil.SampleCollection()

	once, err := engine.Apply(before, ToggleArchive{HabitID: "h1"})
	if err != nil {
		t.Fatalf("Apply(ToggleArchive) failed: %v", err)
	}
	if !once[0].Archived {
		t.Error("expected habit to be archived")
	}
	if len(once[0].Logs) != len(before[0].Logs) {
		t.Error("archiving changed logs")
	}

	twice, err := engine.Apply(once, ToggleArchive{HabitID: "h1"})
	if err != nil {
		t.Fatalf("Apply(ToggleArchive) failed: %v", err)
	}
	if !reflect.DeepEqual(twice, before) {
		t.Error("toggling twice did not restore the original collection")
	}
}

func TestDeleteHabit(t *testing.T) {
	engine, _ := setupEngine(t)
	before := testutil.SampleCollection()

	after, err := engine.Apply(before, DeleteHabit{HabitID: "h1"})
	if err != nil {
		t.Fatalf("Apply(DeleteHabit) failed: %v", err)
	}
	if len(after) != 1 || after[0].ID != "h2" {
		t.Errorf("expected only h2 to remain, got %v", after)
	}
	if len(before) != 2 {
		t.Error("input collection was modified")
	}
}

func TestNotFound(t *testing.T) {
	engine, _ := setupEngine(t)
	before := testutil.SampleCollection()

	actions := []Action{
		IncrementHabit{HabitID: "nope"},
		DeleteLastEntry{HabitID: "nope"},
		RenameHabit{HabitID: "nope", NewName: "x"},
		ToggleArchive{HabitID: "nope"},
		DeleteHabit{HabitID: "nope"},
	}

	for _, a := range actions {
		t.Run(a.Kind(), func(t *testing.T) {
			after, err := engine.Apply(before, a)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("error = %v, want ErrNotFound", err)
			}
			var nf *NotFoundError
			if !errors.As(err, &nf) || nf.HabitID != "nope" {
				t.Errorf("error = %#v, want *NotFoundError for nope", err)
			}
			if !reflect.DeepEqual(after, before) {
				t.Error("collection changed on NotFound")
			}
		})
	}
}

func TestSetHabits(t *testing.T) {
	engine, _ := setupEngine(t)
	replacement := models.Collection{
		testutil.NewHabit("x", "Journal", testutil.MustTime("2023-05-01T00:00:00Z")),
	}

	after, err := engine.Apply(testutil.SampleCollection(), SetHabits{Habits: replacement})
	if err != nil {
		t.Fatalf("Apply(SetHabits) failed: %v", err)
	}
	if !reflect.DeepEqual(after, replacement) {
		t.Errorf("collection = %v, want %v", after, replacement)
	}

	after[0].Name = "mutated"
	if replacement[0].Name != "Journal" {
		t.Error("SetHabits result aliases the supplied collection")
	}
}

func TestSetHabitsRejectsMalformed(t *testing.T) {
	engine, _ := setupEngine(t)
	before := testutil.SampleCollection()
	created := testutil.MustTime("2023-05-01T00:00:00Z")

	tests := []struct {
		name   string
		habits models.Collection
	}{
		{"duplicate ids", models.Collection{
			testutil.NewHabit("x", "a", created),
			testutil.NewHabit("x", "b", created),
		}},
		{"empty name", models.Collection{testutil.NewHabit("x", " ", created)}},
		{"missing id", models.Collection{testutil.NewHabit("", "a", created)}},
		{"zero created time", models.Collection{testutil.NewHabit("x", "a", time.Time{})}},
		{"zero log time", models.Collection{testutil.NewHabit("x", "a", created, time.Time{})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, err := engine.Apply(before, SetHabits{Habits: tt.habits})
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			if !reflect.DeepEqual(after, before) {
				t.Error("collection changed on rejected SetHabits")
			}
		})
	}
}

func TestSetHabitsEmptyCollection(t *testing.T) {
	engine, _ := setupEngine(t)
	after, err := engine.Apply(testutil.SampleCollection(), SetHabits{})
	if err != nil {
		t.Fatalf("Apply(SetHabits{}) failed: %v", err)
	}
	if len(after) != 0 {
		t.Errorf("expected empty collection, got %v", after)
	}
}

type bogusAction struct{ AddHabit }

func TestUnknownAction(t *testing.T) {
	engine, _ := setupEngine(t)
	before := testutil.SampleCollection()

	after, err := engine.Apply(before, bogusAction{})
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("error = %v, want ErrUnknownAction", err)
	}
	if !reflect.DeepEqual(after, before) {
		t.Error("collection changed on unknown action")
	}
}

func TestApplyAllStopsAtFirstFailure(t *testing.T) {
	engine, _ := setupEngine(t)

	c, err := engine.ApplyAll(nil,
		AddHabit{Name: "Drink Water"},
		IncrementHabit{HabitID: "id-1"},
		IncrementHabit{HabitID: "missing"},
		IncrementHabit{HabitID: "id-1"},
	)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ApplyAll error = %v, want ErrNotFound", err)
	}
	if len(c) != 1 || len(c[0].Logs) != 1 {
		t.Errorf("expected state before the failing action, got %v", c)
	}
}

func TestTargetID(t *testing.T) {
	if id, ok := TargetID(RenameHabit{HabitID: "h1", NewName: "x"}); !ok || id != "h1" {
		t.Errorf("TargetID(RenameHabit) = %q, %v", id, ok)
	}
	if _, ok := TargetID(AddHabit{Name: "x"}); ok {
		t.Error("TargetID(AddHabit) reported a target")
	}
}

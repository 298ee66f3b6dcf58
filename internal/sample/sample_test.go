package sample

import (
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/julianstephens/smallwins/internal/validation"
)

var now = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func TestGenerateFixture(t *testing.T) {
	c := Generate(now, time.UTC, 42)

	wantNames := []string{
		"Drink Water", "Do Planks", "Meditate", "Resist Social Media",
		"Journal", "Control anger", "Eat/drink something healthy", "Hold a good posture",
	}
	wantLogs := []int{1834, 235, 788, 3453, 567, 876, 78, 4}

	if len(c) != len(wantNames) {
		t.Fatalf("expected %d habits, got %d", len(wantNames), len(c))
	}
	for i, h := range c {
		if h.ID != strconv.Itoa(i) {
			t.Errorf("habit %d id = %q", i, h.ID)
		}
		if h.Name != wantNames[i] {
			t.Errorf("habit %d name = %q, want %q", i, h.Name, wantNames[i])
		}
		if len(h.Logs) != wantLogs[i] {
			t.Errorf("habit %q has %d logs, want %d", h.Name, len(h.Logs), wantLogs[i])
		}
		if h.Archived || !h.CreatedTime.Equal(now) {
			t.Errorf("habit %q archived=%v created=%v", h.Name, h.Archived, h.CreatedTime)
		}
	}

	if got := c.LogCount(); got != LogCount() {
		t.Errorf("LogCount() = %d, collection has %d", LogCount(), got)
	}
	if r := validation.Collection(c); r.HasErrors() {
		t.Errorf("sample collection is invalid:\n%s", r.FormatReport())
	}
}

func TestGenerateLogsInRangeAndSorted(t *testing.T) {
	c := Generate(now, time.UTC, 7)
	start := StartDate(time.UTC)

	for _, h := range c {
		ts := h.Timestamps()
		if !slices.IsSorted(ts) {
			t.Errorf("logs of %q are not sorted", h.Name)
		}
		for _, l := range h.Logs {
			if l.Time.Before(start) || !l.Time.Before(now) {
				t.Fatalf("log %v of %q outside [%v, %v)", l.Time, h.Name, start, now)
			}
		}
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	a := Generate(now, time.UTC, 99)
	b := Generate(now, time.UTC, 99)
	other := Generate(now, time.UTC, 100)

	if !slices.Equal(a[3].Timestamps(), b[3].Timestamps()) {
		t.Error("same seed produced different logs")
	}
	if slices.Equal(a[3].Timestamps(), other[3].Timestamps()) {
		t.Error("different seeds produced identical logs")
	}
}

func TestGenerateNowBeforeStart(t *testing.T) {
	early := time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := Generate(early, time.UTC, 1)
	for _, h := range c {
		for _, l := range h.Logs {
			if !l.Time.Equal(StartDate(time.UTC)) {
				t.Fatalf("expected logs pinned to start date, got %v", l.Time)
			}
		}
	}
}

package models

import (
	"slices"
	"time"
)

// HabitLog is a single occurrence of a habit. Immutable once created.
type HabitLog struct {
	Time time.Time `json:"time"`
}

// Habit represents a tracked recurring behavior
type Habit struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	CreatedTime time.Time  `json:"createdTime"`
	Archived    bool       `json:"archived"`
	Logs        []HabitLog `json:"logs"` // append order, not necessarily sorted
}

// Clone returns a deep copy of the habit.
func (h Habit) Clone() Habit {
	c := h
	c.Logs = make([]HabitLog, len(h.Logs))
	copy(c.Logs, h.Logs)
	return c
}

// LastLog returns the most recently appended log.
func (h Habit) LastLog() (HabitLog, bool) {
	if len(h.Logs) == 0 {
		return HabitLog{}, false
	}
	return h.Logs[len(h.Logs)-1], true
}

// Timestamps returns the log times as milliseconds since the epoch, in log
// order.
func (h Habit) Timestamps() []int64 {
	ts := make([]int64, len(h.Logs))
	for i, l := range h.Logs {
		ts[i] = l.Time.UnixMilli()
	}
	return ts
}

// Latest returns the newest log time. Imported logs are not necessarily in
// time order, so this can differ from LastLog.
func (h Habit) Latest() (time.Time, bool) {
	ts := h.SortedTimestamps()
	if len(ts) == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ts[0]).UTC(), true
}

// SortedTimestamps returns the log times sorted newest first.
func (h Habit) SortedTimestamps() []int64 {
	ts := h.Timestamps()
	slices.SortFunc(ts, func(a, b int64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})
	return ts
}

// Collection is the ordered set of habits, keyed by ID. It is the entire
// persisted and exported state.
type Collection []Habit

// Clone returns a deep copy of the collection. A nil collection clones to an
// empty, non-nil one.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, h := range c {
		out[i] = h.Clone()
	}
	return out
}

// Index returns the position of the habit with the given ID, or -1.
func (c Collection) Index(id string) int {
	return slices.IndexFunc(c, func(h Habit) bool { return h.ID == id })
}

// Get returns the habit with the given ID.
func (c Collection) Get(id string) (Habit, bool) {
	i := c.Index(id)
	if i < 0 {
		return Habit{}, false
	}
	return c[i], true
}

// FindByName returns the first habit whose name matches exactly.
func (c Collection) FindByName(name string) (Habit, bool) {
	i := slices.IndexFunc(c, func(h Habit) bool { return h.Name == name })
	if i < 0 {
		return Habit{}, false
	}
	return c[i], true
}

// Active returns the habits that are not archived, in collection order.
func (c Collection) Active() Collection {
	out := make(Collection, 0, len(c))
	for _, h := range c {
		if !h.Archived {
			out = append(out, h)
		}
	}
	return out
}

// LogCount returns the number of logs across every habit.
func (c Collection) LogCount() int {
	n := 0
	for _, h := range c {
		n += len(h.Logs)
	}
	return n
}

package habits

import "github.com/julianstephens/smallwins/internal/models"

// Action is a state transition request. The set of actions is closed: only
// the types in this file implement it.
type Action interface {
	// Kind returns the action's wire name, e.g. ADD_HABIT.
	Kind() string
	action()
}

// AddHabit appends a new habit named Name (trimmed).
type AddHabit struct {
	Name string
}

// IncrementHabit appends a log stamped with the current time.
type IncrementHabit struct {
	HabitID string
}

// DeleteLastEntry removes the most recently appended log, which is not
// necessarily the one with the greatest timestamp.
type DeleteLastEntry struct {
	HabitID string
}

// RenameHabit replaces a habit's name.
type RenameHabit struct {
	HabitID string
	NewName string
}

// ToggleArchive flips a habit's archived flag. Logs are untouched.
type ToggleArchive struct {
	HabitID string
}

// DeleteHabit removes a habit and its logs.
type DeleteHabit struct {
	HabitID string
}

// SetHabits replaces the whole collection, e.g. on import or when loading
// sample data.
type SetHabits struct {
	Habits models.Collection
}

func (AddHabit) Kind() string        { return "ADD_HABIT" }
func (IncrementHabit) Kind() string  { return "INCREMENT_HABIT" }
func (DeleteLastEntry) Kind() string { return "DELETE_LAST_ENTRY" }
func (RenameHabit) Kind() string     { return "RENAME_HABIT" }
func (ToggleArchive) Kind() string   { return "TOGGLE_ARCHIVE" }
func (DeleteHabit) Kind() string     { return "DELETE_HABIT" }
func (SetHabits) Kind() string       { return "SET_HABITS" }

func (AddHabit) action()        {}
func (IncrementHabit) action()  {}
func (DeleteLastEntry) action() {}
func (RenameHabit) action()     {}
func (ToggleArchive) action()   {}
func (DeleteHabit) action()     {}
func (SetHabits) action()       {}

// TargetID returns the habit an action refers to, if any.
func TargetID(a Action) (string, bool) {
	switch a := a.(type) {
	case IncrementHabit:
		return a.HabitID, true
	case DeleteLastEntry:
		return a.HabitID, true
	case RenameHabit:
		return a.HabitID, true
	case ToggleArchive:
		return a.HabitID, true
	case DeleteHabit:
		return a.HabitID, true
	}
	return "", false
}

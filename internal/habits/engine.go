package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/smallwins/internal/calendar"
	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/validation"
)

// maxIDAttempts bounds retries when a generated id is already taken.
const maxIDAttempts = 8

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Engine is the habit state reducer. It performs no I/O; its only inputs
// besides the collection and action are the clock and the id source.
type Engine struct {
	clock calendar.Clock
	ids   IDGenerator
}

// NewEngine creates an engine. Nil arguments fall back to the system clock
// and random UUIDs.
func NewEngine(clock calendar.Clock, ids IDGenerator) *Engine {
	if clock == nil {
		clock = calendar.SystemClock{}
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Engine{clock: clock, ids: ids}
}

// Apply computes the collection that results from applying a to c. The
// input is never modified. On error the original collection is returned
// and no partial change is observable.
func (e *Engine) Apply(c models.Collection, a Action) (models.Collection, error) {
	var (
		next models.Collection
		err  error
	)

	switch a := a.(type) {
	case AddHabit:
		next, err = e.addHabit(c, a)
	case IncrementHabit:
		next, err = e.update(c, a.HabitID, func(h *models.Habit) error {
			h.Logs = append(h.Logs, models.HabitLog{Time: e.now()})
			return nil
		})
	case DeleteLastEntry:
		next, err = e.update(c, a.HabitID, func(h *models.Habit) error {
			if len(h.Logs) > 0 {
				h.Logs = h.Logs[:len(h.Logs)-1]
			}
			return nil
		})
	case RenameHabit:
		next, err = e.update(c, a.HabitID, func(h *models.Habit) error {
			name, err := validation.Name(a.NewName)
			if err != nil {
				return &ValidationError{Field: "name", Reason: "must not be empty"}
			}
			h.Name = name
			return nil
		})
	case ToggleArchive:
		next, err = e.update(c, a.HabitID, func(h *models.Habit) error {
			h.Archived = !h.Archived
			return nil
		})
	case DeleteHabit:
		next, err = e.deleteHabit(c, a.HabitID)
	case SetHabits:
		next, err = e.setHabits(a.Habits)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}

	if err != nil {
		return c, err
	}
	return next, nil
}

// ApplyAll applies actions in order and stops at the first failure,
// returning the collection as it was before the failing action.
func (e *Engine) ApplyAll(c models.Collection, actions ...Action) (models.Collection, error) {
	for i, a := range actions {
		next, err := e.Apply(c, a)
		if err != nil {
			return c, fmt.Errorf("action %d (%s): %w", i, a.Kind(), err)
		}
		c = next
	}
	return c, nil
}

// now returns the clock reading in UTC. Zones only matter when bucketing.
func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}

func (e *Engine) addHabit(c models.Collection, a AddHabit) (models.Collection, error) {
	name, err := validation.Name(a.Name)
	if err != nil {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	id, err := e.freshID(c)
	if err != nil {
		return nil, err
	}

	next := c.Clone()
	next = append(next, models.Habit{
		ID:          id,
		Name:        name,
		CreatedTime: e.now(),
		Archived:    false,
		Logs:        []models.HabitLog{},
	})
	return next, nil
}

func (e *Engine) freshID(c models.Collection) (string, error) {
	for range maxIDAttempts {
		id := strings.TrimSpace(e.ids.New())
		if id != "" && c.Index(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique habit id after %d attempts", maxIDAttempts)
}

// update clones c and applies fn to the copy of the habit with the given id.
func (e *Engine) update(c models.Collection, id string, fn func(*models.Habit) error) (models.Collection, error) {
	i := c.Index(id)
	if i < 0 {
		return nil, &NotFoundError{HabitID: id}
	}

	next := c.Clone()
	if err := fn(&next[i]); err != nil {
		return nil, err
	}
	return next, nil
}

func (e *Engine) deleteHabit(c models.Collection, id string) (models.Collection, error) {
	i := c.Index(id)
	if i < 0 {
		return nil, &NotFoundError{HabitID: id}
	}

	next := make(models.Collection, 0, len(c)-1)
	for j, h := range c {
		if j != i {
			next = append(next, h.Clone())
		}
	}
	return next, nil
}

func (e *Engine) setHabits(c models.Collection) (models.Collection, error) {
	result := validation.Collection(c)
	if result.HasErrors() {
		first := result.Errors[0]
		reason := first.Description
		if n := len(result.Errors); n > 1 {
			reason = fmt.Sprintf("%s (and %d more)", reason, n-1)
		}
		return nil, &ValidationError{Field: first.Field, Reason: reason}
	}

	return c.Clone(), nil
}

package habits

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is matched by every *NotFoundError
	ErrNotFound = errors.New("habit not found")
	// ErrUnknownAction is returned for an Action type Apply does not handle
	ErrUnknownAction = errors.New("unknown action")
)

// ValidationError rejects an action whose input is malformed. The
// collection is left unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an action that references an unknown habit id.
type NotFoundError struct {
	HabitID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrNotFound, e.HabitID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

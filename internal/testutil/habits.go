package testutil

import (
	"time"

	"github.com/julianstephens/smallwins/internal/models"
)

// NewHabit builds a habit with logs at the given times.
func NewHabit(id, name string, created time.Time, logs ...time.Time) models.Habit {
	h := models.Habit{
		ID:          id,
		Name:        name,
		CreatedTime: created,
		Logs:        make([]models.HabitLog, 0, len(logs)),
	}
	for _, t := range logs {
		h.Logs = append(h.Logs, models.HabitLog{Time: t})
	}
	return h
}

// MustTime parses an RFC 3339 timestamp or panics.
func MustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SampleCollection returns a small two-habit collection with unsorted logs.
func SampleCollection() models.Collection {
	return models.Collection{
		NewHabit("h1", "Drink Water", MustTime("2024-01-01T07:00:00Z"),
			MustTime("2024-01-01T09:00:00Z"),
			MustTime("2024-01-01T08:00:00Z"),
			MustTime("2024-01-02T08:00:00Z"),
		),
		NewHabit("h2", "Meditate", MustTime("2024-01-01T07:30:00Z")),
	}
}

package calendar

import (
	"fmt"
	"time"
)

// Calendar performs zone-aware period arithmetic. Period starts are
// computed in the calendar's location, never in UTC.
type Calendar interface {
	// StartOf returns the first instant of the period containing t.
	StartOf(t time.Time, p PeriodType) time.Time
	// EndOf returns the first instant of the period following the one
	// containing t (an exclusive bound).
	EndOf(t time.Time, p PeriodType) time.Time
	// Add shifts t by n units of p. Month and year arithmetic keeps the
	// day of month where valid and clamps to the target month's last day
	// otherwise.
	Add(t time.Time, p PeriodType, n int) time.Time
	Subtract(t time.Time, p PeriodType, n int) time.Time
	DaysInMonth(t time.Time) int
	In(t time.Time) time.Time
	Location() *time.Location
}

// Local is a Gregorian calendar bound to a single location. Weeks start on
// Sunday.
type Local struct {
	loc *time.Location
}

var _ Calendar = (*Local)(nil)

// NewLocal creates a calendar for loc. A nil location means time.Local.
func NewLocal(loc *time.Location) *Local {
	if loc == nil {
		loc = time.Local
	}
	return &Local{loc: loc}
}

func (c *Local) Location() *time.Location { return c.loc }

func (c *Local) In(t time.Time) time.Time { return t.In(c.loc) }

func (c *Local) StartOf(t time.Time, p PeriodType) time.Time {
	t = t.In(c.loc)
	y, m, d := t.Date()
	switch p {
	case Day:
		return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
	case Week:
		return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, c.loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, c.loc)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, c.loc)
	}
	panic(fmt.Sprintf("calendar: unknown period type %q", p))
}

func (c *Local) EndOf(t time.Time, p PeriodType) time.Time {
	return c.Add(c.StartOf(t, p), p, 1)
}

func (c *Local) Add(t time.Time, p PeriodType, n int) time.Time {
	t = t.In(c.loc)
	switch p {
	case Day:
		return t.AddDate(0, 0, n)
	case Week:
		return t.AddDate(0, 0, 7*n)
	case Month:
		return c.addMonths(t, n)
	case Year:
		return c.addMonths(t, 12*n)
	}
	panic(fmt.Sprintf("calendar: unknown period type %q", p))
}

func (c *Local) Subtract(t time.Time, p PeriodType, n int) time.Time {
	return c.Add(t, p, -n)
}

func (c *Local) DaysInMonth(t time.Time) int {
	t = t.In(c.loc)
	return daysIn(t.Year(), t.Month())
}

// addMonths differs from time.AddDate, which normalizes Jan 31 + 1 month
// to early March.
func (c *Local) addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	year := y + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	if last := daysIn(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), c.loc)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Package navigator tracks the period window being viewed and moves it
// backwards and forwards one period at a time.
package navigator

import (
	"fmt"
	"time"

	"github.com/julianstephens/smallwins/internal/aggregate"
	"github.com/julianstephens/smallwins/internal/calendar"
)

// Direction selects which way Advance moves the window.
type Direction int

const (
	Previous Direction = iota
	Next
)

func (d Direction) String() string {
	switch d {
	case Previous:
		return "previous"
	case Next:
		return "next"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Navigator holds the current period type and window.
type Navigator struct {
	cal    calendar.Calendar
	period calendar.PeriodType
	window calendar.Window
}

// New starts on the Day period with the window containing now.
func New(cal calendar.Calendar, now time.Time) *Navigator {
	return &Navigator{
		cal:    cal,
		period: calendar.Day,
		window: calendar.CurrentWindow(cal, now, calendar.Day),
	}
}

func (n *Navigator) Period() calendar.PeriodType { return n.period }

func (n *Navigator) Window() calendar.Window { return n.window }

// SetPeriodType switches granularity, keeping the new window anchored on
// the last instant of the previous one. Switching from Day on Jan 31 to
// Month therefore lands on January.
func (n *Navigator) SetPeriodType(p calendar.PeriodType) {
	anchor := n.window.Last()
	n.period = p
	n.window = calendar.CurrentWindow(n.cal, anchor, p)
}

// Advance shifts both window bounds by one unit of the current period.
func (n *Navigator) Advance(dir Direction) {
	step := 1
	if dir == Previous {
		step = -1
	}
	n.window = calendar.Window{
		Start: n.cal.Add(n.window.Start, n.period, step),
		End:   n.cal.Add(n.window.End, n.period, step),
	}
}

// Seek advances |offset| times, backwards for a negative offset.
func (n *Navigator) Seek(offset int) {
	dir := Next
	if offset < 0 {
		dir, offset = Previous, -offset
	}
	for range offset {
		n.Advance(dir)
	}
}

// Title renders the window for display.
func (n *Navigator) Title() string {
	start := n.cal.In(n.window.Start)
	switch n.period {
	case calendar.Day:
		return start.Format("January 2, 2006")
	case calendar.Week:
		return start.Format("January 2, 2006") + " : " + n.cal.In(n.window.Last()).Format("January 2, 2006")
	case calendar.Month:
		return start.Format("January 2006")
	case calendar.Year:
		return start.Format("2006")
	}
	return ""
}

// Aggregate buckets timestamps over the current window.
func (n *Navigator) Aggregate(timestamps []int64) []aggregate.Bucket {
	return aggregate.Aggregate(n.cal, timestamps, n.period, n.window)
}

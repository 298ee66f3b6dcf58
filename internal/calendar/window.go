package calendar

import "time"

// Window is the span currently being viewed: one full period unit wide,
// from Start up to but not including End.
type Window struct {
	Start time.Time
	End   time.Time
}

// CurrentWindow returns the window of period p containing t.
func CurrentWindow(cal Calendar, t time.Time, p PeriodType) Window {
	return Window{
		Start: cal.StartOf(t, p),
		End:   cal.EndOf(t, p),
	}
}

// Contains reports whether t lies strictly inside the window. Both
// boundaries are excluded.
func (w Window) Contains(t time.Time) bool {
	return t.After(w.Start) && t.Before(w.End)
}

// ContainsMillis is Contains for a millisecond epoch timestamp.
func (w Window) ContainsMillis(ms int64) bool {
	return ms > w.Start.UnixMilli() && ms < w.End.UnixMilli()
}

// Last returns the last representable instant inside the window.
func (w Window) Last() time.Time {
	return w.End.Add(-time.Nanosecond)
}

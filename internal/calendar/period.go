package calendar

import (
	"fmt"
	"strings"
)

// PeriodType is the granularity at which logs are bucketed and at which
// the navigation window advances.
type PeriodType string

const (
	Day   PeriodType = "day"
	Week  PeriodType = "week"
	Month PeriodType = "month"
	Year  PeriodType = "year"
)

// PeriodTypes lists every period in display order.
var PeriodTypes = []PeriodType{Day, Week, Month, Year}

func (p PeriodType) String() string { return string(p) }

// Valid reports whether p is one of the known period types.
func (p PeriodType) Valid() bool {
	switch p {
	case Day, Week, Month, Year:
		return true
	}
	return false
}

// ParsePeriodType parses a case-insensitive period name.
func ParsePeriodType(s string) (PeriodType, error) {
	p := PeriodType(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid period type: %q (expected day, week, month or year)", s)
	}
	return p, nil
}

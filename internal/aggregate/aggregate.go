// Package aggregate buckets habit log timestamps by period for display.
package aggregate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/smallwins/internal/calendar"
)

// Bucket is one labeled slot of an aggregation.
type Bucket struct {
	Label string
	Count int
}

var weekdayLabels = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var monthLabels = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Labels returns the fixed bucket labels for period p. The Month labels
// depend on the number of days in the month containing start.
func Labels(cal calendar.Calendar, p calendar.PeriodType, start time.Time) []string {
	switch p {
	case calendar.Day:
		return numberLabels(0, 23)
	case calendar.Week:
		return append([]string(nil), weekdayLabels...)
	case calendar.Month:
		return numberLabels(1, cal.DaysInMonth(start))
	case calendar.Year:
		return append([]string(nil), monthLabels...)
	}
	panic(fmt.Sprintf("aggregate: unknown period type %q", p))
}

// Aggregate counts the timestamps (milliseconds since the epoch) strictly
// inside w, bucketed by p in the calendar's zone. Every bucket of the period
// is present, in fixed label order, even when its count is zero. Input order
// does not matter.
func Aggregate(cal calendar.Calendar, timestamps []int64, p calendar.PeriodType, w calendar.Window) []Bucket {
	labels := Labels(cal, p, w.Start)
	counts := make([]int, len(labels))

	for _, ms := range timestamps {
		if !w.ContainsMillis(ms) {
			continue
		}
		i := bucketIndex(cal.In(time.UnixMilli(ms)), p)
		// A month window only spans days 1..N, but guard against callers
		// passing a window that is wider than one period.
		if i >= 0 && i < len(counts) {
			counts[i]++
		}
	}

	buckets := make([]Bucket, len(labels))
	for i, label := range labels {
		buckets[i] = Bucket{Label: label, Count: counts[i]}
	}
	return buckets
}

// Total returns the sum of all bucket counts.
func Total(buckets []Bucket) int {
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	return total
}

// ShortLabel returns the first three characters of a label, as used on
// compact axes ("Sun", "Jan", "12").
func ShortLabel(label string) string {
	r := []rune(label)
	if len(r) <= 3 {
		return label
	}
	return string(r[:3])
}

func bucketIndex(t time.Time, p calendar.PeriodType) int {
	switch p {
	case calendar.Day:
		return t.Hour()
	case calendar.Week:
		return int(t.Weekday())
	case calendar.Month:
		return t.Day() - 1
	case calendar.Year:
		return int(t.Month()) - 1
	}
	return -1
}

func numberLabels(from, to int) []string {
	labels := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		labels = append(labels, strconv.Itoa(i))
	}
	return labels
}

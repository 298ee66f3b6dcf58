// Package sample generates a demonstration habit collection.
package sample

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/julianstephens/smallwins/internal/models"
)

type fixture struct {
	name string
	logs int
}

var fixtures = []fixture{
	{"Drink Water", 1834},
	{"Do Planks", 235},
	{"Meditate", 788},
	{"Resist Social Media", 3453},
	{"Journal", 567},
	{"Control anger", 876},
	{"Eat/drink something healthy", 78},
	{"Hold a good posture", 4},
}

// StartDate returns the first instant sample logs may fall on: midnight,
// February 1 2020, in loc.
func StartDate(loc *time.Location) time.Time {
	return time.Date(2020, time.February, 1, 0, 0, 0, 0, loc)
}

// Generate builds the sample collection. Habit ids are "0".."7", every habit
// is created at now, and logs are spread uniformly between StartDate(loc)
// and now, sorted oldest first at millisecond precision. The same seed and
// now always produce the same collection.
func Generate(now time.Time, loc *time.Location, seed uint64) models.Collection {
	if loc == nil {
		loc = time.Local
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	start := StartDate(loc).UnixMilli()
	span := now.UnixMilli() - start

	c := make(models.Collection, len(fixtures))
	for i, f := range fixtures {
		c[i] = models.Habit{
			ID:          strconv.Itoa(i),
			Name:        f.name,
			CreatedTime: now.UTC().Truncate(time.Millisecond),
			Logs:        randomLogs(rng, start, span, f.logs),
		}
	}
	return c
}

// LogCount returns the total number of logs Generate produces.
func LogCount() int {
	n := 0
	for _, f := range fixtures {
		n += f.logs
	}
	return n
}

func randomLogs(rng *rand.Rand, start, span int64, n int) []models.HabitLog {
	millis := make([]int64, n)
	for i := range millis {
		var off int64
		if span > 0 {
			off = rng.Int64N(span)
		}
		millis[i] = start + off
	}
	slices.Sort(millis)

	logs := make([]models.HabitLog, n)
	for i, ms := range millis {
		logs[i] = models.HabitLog{Time: time.UnixMilli(ms).UTC()}
	}
	return logs
}


package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/smallwins/internal/calendar"
	"github.com/julianstephens/smallwins/internal/constants"
)

type StatsCmd struct {
	Habit  string `arg:"" help:"Habit id or name."`
	Period string `short:"p" help:"Period to aggregate over." enum:"day,week,month,year" default:"day"`
	At     string `help:"Date inside the period (YYYY-MM-DD, default today)."`
	Offset int    `short:"o" help:"Periods to move from --at; negative is earlier."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	period, err := calendar.ParsePeriodType(c.Period)
	if err != nil {
		return err
	}
	ctrl, id, err := resolve(ctx, c.Habit)
	if err != nil {
		return err
	}

	at := ctrl.Now()
	if c.At != "" {
		at, err = time.ParseInLocation(constants.DateFormat, c.At, ctrl.Calendar().Location())
		if err != nil {
			return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", c.At)
		}
	}

	stats, err := ctrl.Stats(id, period, at, c.Offset)
	if err != nil {
		return err
	}

	ctx.printf("%s  %s\n\n", titleStyle.Render(stats.Habit.Name), stats.Title)

	tbl := newTable(bucketHeader(stats.Period), "COUNT")
	tbl.RightAlign(1)
	for _, b := range stats.Buckets {
		count := strconv.Itoa(b.Count)
		if b.Count == 0 {
			count = mutedStyle.Render(count)
		}
		tbl.AddRow(b.Label, count)
	}
	ctx.println(tbl)
	ctx.println()

	ctx.printf("Total: %d\n", stats.Summary.Total)
	if stats.Summary.Total > 0 {
		ctx.printf("Peak:  %s (%d)\n", stats.Summary.Peak.Label, stats.Summary.Peak.Count)
	}
	ctx.printf("Empty: %d of %d\n", stats.Summary.EmptyCount, len(stats.Buckets))
	return nil
}

func bucketHeader(p calendar.PeriodType) string {
	switch p {
	case calendar.Day:
		return "HOUR"
	case calendar.Week:
		return "WEEKDAY"
	case calendar.Month:
		return "DAY"
	case calendar.Year:
		return "MONTH"
	}
	return "BUCKET"
}

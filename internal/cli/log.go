package cli

import (
	"fmt"
	"strings"

	"github.com/kmaguire/cadence/internal/constants"
	"github.com/kmaguire/cadence/internal/dateutil"
	"github.com/kmaguire/cadence/internal/models"
)

type LogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show history for one habit only."`
}

func (c *LogCmd) Run(ctx *Context) error {
	habits, err := ctx.Tracker.Habits()
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits yet. Add one with 'cadence habit add'.")
		return nil
	}

	selected := habits
	if c.Habit != "" {
		selected = nil
		for _, h := range habits {
			if h.Title == c.Habit {
				selected = []models.HabitWithStats{h}
				break
			}
		}
		if len(selected) == 0 {
			return fmt.Errorf("habit %q not found", c.Habit)
		}
	}

	days := c.Days
	if days <= 0 {
		days = constants.DefaultLogDays
	}

	// Window of day keys, oldest first, ending today
	today := dateutil.TodayKey()
	window := make([]string, days)
	for i := 0; i < days; i++ {
		day, err := dateutil.AddDays(today, i-(days-1))
		if err != nil {
			return err
		}
		window[i] = day
	}

	// Header shows the day of month of each column
	var header strings.Builder
	header.WriteString(fmt.Sprintf("%-24s", ""))
	for _, day := range window {
		header.WriteString(fmt.Sprintf("%3s", day[len(day)-2:]))
	}
	fmt.Println(header.String())

	for _, h := range selected {
		logs, err := ctx.Tracker.Logs(h.ID)
		if err != nil {
			return err
		}
		byDay := make(map[string]bool, len(logs))
		for _, log := range logs {
			byDay[log.Day] = log.Completed
		}

		var row strings.Builder
		row.WriteString(fmt.Sprintf("%-24s", truncate(h.Title, 23)))
		for _, day := range window {
			completed, logged := byDay[day]
			switch {
			case completed:
				row.WriteString("  ✓")
			case logged:
				row.WriteString("  ✗")
			default:
				row.WriteString("  ·")
			}
		}
		fmt.Println(row.String())
	}

	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

package cli

import (
	"fmt"

	"github.com/kmaguire/cadence/internal/dateutil"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *Context) error {
	habits, err := ctx.Tracker.Habits()
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits yet. Add one with 'cadence habit add'.")
		return nil
	}

	fmt.Printf("Habits for %s:\n\n", dateutil.TodayKey())
	done := 0
	for _, h := range habits {
		status := "[ ]"
		if h.CompletedToday {
			status = "[x]"
			done++
		}
		fmt.Printf("%s %s\n", status, h.Title)
	}

	fmt.Printf("\nDone: %d/%d\n", done, len(habits))
	return nil
}

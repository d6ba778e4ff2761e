package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/kmaguire/cadence/internal/constants"
	"github.com/kmaguire/cadence/internal/errors"
	"github.com/kmaguire/cadence/internal/models"
	"github.com/kmaguire/cadence/internal/tracker"
	"github.com/kmaguire/cadence/internal/validation"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with statistics."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit an existing habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
	Toggle HabitToggleCmd `cmd:"" help:"Toggle a habit's completion for a day."`
	Show   HabitShowCmd   `cmd:"" help:"Show one habit in detail."`
}

// findHabitByTitle resolves a habit by its title.
func findHabitByTitle(ctx *Context, title string) (models.HabitWithStats, error) {
	habits, err := ctx.Tracker.Habits()
	if err != nil {
		return models.HabitWithStats{}, err
	}
	for _, h := range habits {
		if h.Title == title {
			return h, nil
		}
	}
	return models.HabitWithStats{}, errors.NotFound("habit %q not found", title)
}

// parseTargetDays parses a comma-separated list of weekdays, accepting
// numbers (0=Sunday) and short or long day names.
func parseTargetDays(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}

	dayMap := map[string]int{
		"sun": 0, "sunday": 0,
		"mon": 1, "monday": 1,
		"tue": 2, "tuesday": 2,
		"wed": 3, "wednesday": 3,
		"thu": 4, "thursday": 4,
		"fri": 5, "friday": 5,
		"sat": 6, "saturday": 6,
	}

	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if day, ok := dayMap[part]; ok {
			days = append(days, day)
			continue
		}
		day, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, day)
	}
	return days, nil
}

type HabitAddCmd struct {
	Title       string `arg:"" optional:"" help:"Habit title."`
	Description string `help:"What does success look like?"`
	Frequency   string `help:"daily or weekly." default:"daily"`
	Days        string `help:"Target days for weekly habits (e.g. 'mon,wed,fri' or '1,3,5')."`
	Reminder    string `help:"Daily reminder time (HH:MM)."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	title, description, frequency := c.Title, c.Description, c.Frequency

	// Prompt for anything not given on the command line
	if title == "" || description == "" {
		fields := []huh.Field{}
		if title == "" {
			fields = append(fields, huh.NewInput().Title("Title").Value(&title))
		}
		if description == "" {
			fields = append(fields, huh.NewInput().Title("Description").Value(&description))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Frequency").
			Options(
				huh.NewOption("Daily", "daily"),
				huh.NewOption("Weekly", "weekly"),
			).
			Value(&frequency))

		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			return err
		}
	}

	targetDays, err := parseTargetDays(c.Days)
	if err != nil {
		return err
	}

	habit, err := ctx.Tracker.CreateHabit(validation.HabitInput{
		Title:       title,
		Description: description,
		Frequency:   frequency,
		TargetDays:  targetDays,
		Reminder:    c.Reminder,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s\n", habit.Title)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	habits, err := ctx.Tracker.Habits()
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits yet. Add one with 'cadence habit add'.")
		return nil
	}

	for _, h := range habits {
		status := "○"
		if h.CompletedToday {
			status = "✓"
		}
		fmt.Printf("%s %-24s streak %3d   %5.1f%%\n", status, h.Title, h.Streak, h.CompletionRate)
	}
	return nil
}

type HabitEditCmd struct {
	Title       string `arg:"" help:"Habit title."`
	NewTitle    string `help:"New title."`
	Description string `help:"New description."`
	Frequency   string `help:"daily or weekly."`
	Days        string `help:"Target days for weekly habits."`
	Reminder    string `help:"New reminder time (HH:MM); pass 'off' to remove."`
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	habit, err := findHabitByTitle(ctx, c.Title)
	if err != nil {
		return err
	}

	var patch tracker.HabitPatch
	if c.NewTitle != "" {
		patch.Title = &c.NewTitle
	}
	if c.Description != "" {
		patch.Description = &c.Description
	}
	if c.Frequency != "" {
		freq := constants.Frequency(c.Frequency)
		patch.Frequency = &freq
	}
	if c.Days != "" {
		days, err := parseTargetDays(c.Days)
		if err != nil {
			return err
		}
		patch.TargetDays = &days
	}
	if c.Reminder != "" {
		reminder := c.Reminder
		if reminder == "off" {
			reminder = ""
		}
		patch.Reminder = &reminder
	}

	updated, err := ctx.Tracker.UpdateHabit(habit.ID, patch)
	if err != nil {
		return err
	}

	fmt.Printf("Updated habit: %s\n", updated.Title)
	return nil
}

type HabitDeleteCmd struct {
	Title string `arg:"" help:"Habit title."`
	Yes   bool   `help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	habit, err := findHabitByTitle(ctx, c.Title)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q and all of its history?", habit.Title)).
			Value(&confirmed)
		if err := huh.NewForm(huh.NewGroup(prompt)).Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := ctx.Tracker.DeleteHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", habit.Title)
	return nil
}

type HabitToggleCmd struct {
	Title string `arg:"" help:"Habit title."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitToggleCmd) Run(ctx *Context) error {
	habit, err := findHabitByTitle(ctx, c.Title)
	if err != nil {
		return err
	}

	log, err := ctx.Tracker.ToggleCompletion(habit.ID, c.Date)
	if err != nil {
		return err
	}

	if log.Completed {
		fmt.Printf("Marked %q done for %s\n", habit.Title, log.Day)
	} else {
		fmt.Printf("Marked %q missed for %s\n", habit.Title, log.Day)
	}
	return nil
}

type HabitShowCmd struct {
	Title string `arg:"" help:"Habit title."`
}

func (c *HabitShowCmd) Run(ctx *Context) error {
	habit, err := findHabitByTitle(ctx, c.Title)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", habit.Title)
	fmt.Printf("  %s\n", habit.Description)
	fmt.Printf("  frequency:       %s\n", habit.Frequency)
	if len(habit.TargetDays) > 0 {
		fmt.Printf("  target days:     %v\n", habit.TargetDays)
	}
	fmt.Printf("  streak:          %d\n", habit.Streak)
	fmt.Printf("  completion rate: %.1f%%\n", habit.CompletionRate)
	fmt.Printf("  completed today: %v\n", habit.CompletedToday)
	fmt.Printf("  created:         %s\n", habit.CreatedAt.Format("2006-01-02"))
	return nil
}

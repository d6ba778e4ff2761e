// Package stats derives habit statistics from completion logs. All
// functions are pure: they read an immutable snapshot of the log
// collection and never touch storage or the clock, so "today" is always
// passed in by the caller.
package stats

import (
	"sort"

	"github.com/kmaguire/cadence/internal/dateutil"
	"github.com/kmaguire/cadence/internal/models"
)

// StreakOn returns the number of consecutive completed days ending at the
// most recent completed day, counted as of the given day key.
//
// A streak is alive only while the user has not yet missed a day: if the
// most recent completed day is neither today nor yesterday the streak is 0,
// even when an older consecutive run exists. Missing today does not break
// the streak, since today is not over.
func StreakOn(habitID string, logs []models.HabitLog, today string) int {
	days := completedDays(habitID, logs)
	if len(days) == 0 {
		return 0
	}

	// Zero-padded YYYY-MM-DD keys sort chronologically, so descending
	// lexicographic order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	sinceRecent, err := dateutil.DaysBetween(today, days[0])
	if err != nil || sinceRecent < 0 || sinceRecent > 1 {
		return 0
	}

	streak := 1
	for i := 0; i < len(days)-1; i++ {
		gap, err := dateutil.DaysBetween(days[i], days[i+1])
		if err != nil || gap != 1 {
			break
		}
		streak++
	}

	return streak
}

// CompletionRate returns the percentage (0-100) of this habit's logged days
// that are marked completed. Days with no log at all are not yet tracked
// and stay out of the denominator; explicitly missed days count against the
// rate. Returns 0 when the habit has no logs.
func CompletionRate(habitID string, logs []models.HabitLog) float64 {
	total := 0
	completed := 0
	for _, log := range logs {
		if log.HabitID != habitID {
			continue
		}
		total++
		if log.Completed {
			completed++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// CompletedOn reports whether the habit has a completed log for the given day.
func CompletedOn(habitID string, logs []models.HabitLog, day string) bool {
	for _, log := range logs {
		if log.HabitID == habitID && log.Day == day && log.Completed {
			return true
		}
	}
	return false
}

// Project attaches computed statistics to every habit, preserving the input
// order. Presentation layers rely on the ordering being stable.
func Project(habits []models.Habit, logs []models.HabitLog, today string) []models.HabitWithStats {
	projected := make([]models.HabitWithStats, len(habits))
	for i, habit := range habits {
		projected[i] = models.HabitWithStats{
			Habit:          habit,
			Streak:         StreakOn(habit.ID, logs, today),
			CompletedToday: CompletedOn(habit.ID, logs, today),
			CompletionRate: CompletionRate(habit.ID, logs),
		}
	}
	return projected
}

// completedDays collects the distinct day keys with a completed log for the
// habit. The store guarantees at most one log per (habit, day); the map
// guards against upstream violations anyway.
func completedDays(habitID string, logs []models.HabitLog) []string {
	seen := make(map[string]struct{})
	var days []string
	for _, log := range logs {
		if log.HabitID != habitID || !log.Completed {
			continue
		}
		if _, ok := seen[log.Day]; ok {
			continue
		}
		seen[log.Day] = struct{}{}
		days = append(days, log.Day)
	}
	return days
}

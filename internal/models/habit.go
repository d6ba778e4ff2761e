package models

import (
	"time"

	"github.com/kmaguire/cadence/internal/constants"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Frequency   constants.Frequency `json:"frequency"`
	TargetDays  []int               `json:"target_days,omitempty"` // days of week (0-6), weekly habits only
	CreatedAt   time.Time           `json:"created_at"`
	UserID      string              `json:"user_id"`
	ReminderRef string              `json:"reminder_ref,omitempty"` // opaque token owned by the notifier
}

// HabitLog records whether a habit was completed on a single day.
// At most one log exists per (habit, day); toggling flips Completed in place.
type HabitLog struct {
	HabitID   string `json:"habit_id"`
	Day       string `json:"day"` // YYYY-MM-DD format
	Completed bool   `json:"completed"`
}

// HabitWithStats is a Habit plus statistics derived from its logs.
// It is recomputed on every read and never persisted.
type HabitWithStats struct {
	Habit
	Streak         int     `json:"streak"`
	CompletedToday bool    `json:"completed_today"`
	CompletionRate float64 `json:"completion_rate"` // percentage, 0-100
}

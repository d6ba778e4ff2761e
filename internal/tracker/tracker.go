// Package tracker owns the in-memory habit and log collections for the
// signed-in user and every mutation path into them. Reads project
// statistics on the fly; writes update memory synchronously and persist in
// the background, so a read issued right after a write always sees the new
// state even if the save is still in flight.
package tracker

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kmaguire/cadence/internal/constants"
	"github.com/kmaguire/cadence/internal/dateutil"
	"github.com/kmaguire/cadence/internal/errors"
	"github.com/kmaguire/cadence/internal/logger"
	"github.com/kmaguire/cadence/internal/models"
	"github.com/kmaguire/cadence/internal/stats"
	"github.com/kmaguire/cadence/internal/storage"
	"github.com/kmaguire/cadence/internal/validation"
)

// ReminderScheduler is the notification collaborator. Schedule returns an
// opaque token the tracker stores on the habit and forwards to Cancel.
type ReminderScheduler interface {
	Schedule(habitID, title, timeOfDay string) (string, error)
	Cancel(token string) error
}

// Tracker is the habit-tracking core.
type Tracker struct {
	store     storage.Provider
	reminders ReminderScheduler
	todayFn   func() string

	userID string
	habits []models.Habit
	logs   []models.HabitLog

	mu      sync.Mutex
	saveSeq map[string]uint64
	saves   sync.WaitGroup
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithReminders wires the notification collaborator. Without it, reminder
// times are validated but not scheduled.
func WithReminders(r ReminderScheduler) Option {
	return func(t *Tracker) { t.reminders = r }
}

// WithToday overrides the clock used for "today". Tests use this to pin
// the calendar day.
func WithToday(todayFn func() string) Option {
	return func(t *Tracker) { t.todayFn = todayFn }
}

func New(store storage.Provider, opts ...Option) *Tracker {
	t := &Tracker{
		store:   store,
		todayFn: dateutil.TodayKey,
		saveSeq: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetUser swaps both collections to the given user's, reloading them
// wholesale from storage. An empty id signs the tracker out. The swap is
// all-or-nothing: on a load failure the tracker stays signed out rather
// than exposing one user's habits with another's logs.
func (t *Tracker) SetUser(userID string) error {
	// Drain the previous user's in-flight saves before touching storage.
	t.saves.Wait()

	t.userID = ""
	t.habits = nil
	t.logs = nil

	if userID == "" {
		return nil
	}

	habits, err := loadBlob[models.Habit](t.store, fmt.Sprintf(constants.HabitsKeyFmt, userID))
	if err != nil {
		return fmt.Errorf("loading habits: %w", err)
	}
	logs, err := loadBlob[models.HabitLog](t.store, fmt.Sprintf(constants.LogsKeyFmt, userID))
	if err != nil {
		return fmt.Errorf("loading logs: %w", err)
	}

	t.userID = userID
	t.habits = habits
	t.logs = logs
	return nil
}

// CreateHabit validates the input, assigns identity, and appends the habit.
// No logs are created. If a reminder time is given and a scheduler is
// wired, scheduling failures are logged, not returned: a habit without its
// reminder is better than no habit.
func (t *Tracker) CreateHabit(in validation.HabitInput) (models.Habit, error) {
	if t.userID == "" {
		return models.Habit{}, errors.Unauthenticated("sign in to create habits")
	}
	if err := validation.ValidateHabitInput(in); err != nil {
		return models.Habit{}, err
	}

	habit := models.Habit{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Frequency:   constants.Frequency(in.Frequency),
		TargetDays:  in.TargetDays,
		CreatedAt:   time.Now(),
		UserID:      t.userID,
	}

	if in.Reminder != "" && t.reminders != nil {
		token, err := t.reminders.Schedule(habit.ID, habit.Title, in.Reminder)
		if err != nil {
			logger.Warn("failed to schedule reminder", "habit", habit.Title, "error", err)
		} else {
			habit.ReminderRef = token
		}
	}

	t.habits = append(t.habits, habit)
	t.persistHabits()
	return habit, nil
}

// HabitPatch carries the fields UpdateHabit may change. Identity fields
// (id, user id, creation time) are not in the patch and so cannot be
// overwritten.
type HabitPatch struct {
	Title       *string
	Description *string
	Frequency   *constants.Frequency
	TargetDays  *[]int
	Reminder    *string // HH:MM; empty string cancels the reminder
}

// UpdateHabit merges the patch into an existing habit.
func (t *Tracker) UpdateHabit(id string, patch HabitPatch) (models.Habit, error) {
	if t.userID == "" {
		return models.Habit{}, errors.Unauthenticated("sign in to update habits")
	}

	idx := t.habitIndex(id)
	if idx < 0 {
		return models.Habit{}, errors.NotFound("habit %s not found", id)
	}

	merged := t.habits[idx]
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Frequency != nil {
		merged.Frequency = *patch.Frequency
	}
	if patch.TargetDays != nil {
		merged.TargetDays = *patch.TargetDays
	}

	reminder := ""
	if patch.Reminder != nil {
		reminder = *patch.Reminder
	}
	if err := validation.ValidateHabitInput(validation.HabitInput{
		Title:       merged.Title,
		Description: merged.Description,
		Frequency:   string(merged.Frequency),
		TargetDays:  merged.TargetDays,
		Reminder:    reminder,
	}); err != nil {
		return models.Habit{}, err
	}

	if patch.Reminder != nil && t.reminders != nil {
		if merged.ReminderRef != "" {
			if err := t.reminders.Cancel(merged.ReminderRef); err != nil {
				logger.Warn("failed to cancel old reminder", "habit", merged.Title, "error", err)
			}
			merged.ReminderRef = ""
		}
		if reminder != "" {
			token, err := t.reminders.Schedule(merged.ID, merged.Title, reminder)
			if err != nil {
				logger.Warn("failed to schedule reminder", "habit", merged.Title, "error", err)
			} else {
				merged.ReminderRef = token
			}
		}
	}

	t.habits[idx] = merged
	t.persistHabits()
	return merged, nil
}

// DeleteHabit removes the habit and all of its logs. Both collections are
// updated before returning, so no reader can observe the habit without its
// logs or vice versa.
func (t *Tracker) DeleteHabit(id string) error {
	if t.userID == "" {
		return errors.Unauthenticated("sign in to delete habits")
	}

	idx := t.habitIndex(id)
	if idx < 0 {
		return errors.NotFound("habit %s not found", id)
	}

	habit := t.habits[idx]
	if habit.ReminderRef != "" && t.reminders != nil {
		if err := t.reminders.Cancel(habit.ReminderRef); err != nil {
			logger.Warn("failed to cancel reminder", "habit", habit.Title, "error", err)
		}
	}

	t.habits = append(t.habits[:idx], t.habits[idx+1:]...)

	kept := t.logs[:0]
	for _, log := range t.logs {
		if log.HabitID != id {
			kept = append(kept, log)
		}
	}
	t.logs = kept

	t.persistHabits()
	t.persistLogs()
	return nil
}

// ToggleCompletion flips the log for (habit, day), creating a completed log
// when none exists. Flipping to false keeps the record: an explicit miss
// stays in the completion-rate denominator. Two toggles restore the prior
// state. An empty day means today.
func (t *Tracker) ToggleCompletion(habitID, day string) (models.HabitLog, error) {
	if t.userID == "" {
		return models.HabitLog{}, errors.Unauthenticated("sign in to track habits")
	}
	if t.habitIndex(habitID) < 0 {
		return models.HabitLog{}, errors.NotFound("habit %s not found", habitID)
	}

	if day == "" {
		day = t.todayFn()
	} else if _, err := dateutil.ParseDay(day); err != nil {
		return models.HabitLog{}, errors.ValidationWrap(err, "invalid date")
	}

	for i := range t.logs {
		if t.logs[i].HabitID == habitID && t.logs[i].Day == day {
			t.logs[i].Completed = !t.logs[i].Completed
			t.persistLogs()
			return t.logs[i], nil
		}
	}

	log := models.HabitLog{HabitID: habitID, Day: day, Completed: true}
	t.logs = append(t.logs, log)
	t.persistLogs()
	return log, nil
}

// Habits returns every habit with computed statistics, in insertion order.
func (t *Tracker) Habits() ([]models.HabitWithStats, error) {
	if t.userID == "" {
		return nil, errors.Unauthenticated("sign in to view habits")
	}
	return stats.Project(t.habits, t.logs, t.todayFn()), nil
}

// Habit returns a single habit with computed statistics.
func (t *Tracker) Habit(id string) (models.HabitWithStats, error) {
	if t.userID == "" {
		return models.HabitWithStats{}, errors.Unauthenticated("sign in to view habits")
	}
	idx := t.habitIndex(id)
	if idx < 0 {
		return models.HabitWithStats{}, errors.NotFound("habit %s not found", id)
	}
	today := t.todayFn()
	return models.HabitWithStats{
		Habit:          t.habits[idx],
		Streak:         stats.StreakOn(id, t.logs, today),
		CompletedToday: stats.CompletedOn(id, t.logs, today),
		CompletionRate: stats.CompletionRate(id, t.logs),
	}, nil
}

// Logs returns a copy of the logs for one habit.
func (t *Tracker) Logs(habitID string) ([]models.HabitLog, error) {
	if t.userID == "" {
		return nil, errors.Unauthenticated("sign in to view logs")
	}
	var out []models.HabitLog
	for _, log := range t.logs {
		if log.HabitID == habitID {
			out = append(out, log)
		}
	}
	return out, nil
}

// Close drains pending background saves so a clean exit is durable.
func (t *Tracker) Close() error {
	t.saves.Wait()
	return nil
}

func (t *Tracker) habitIndex(id string) int {
	for i := range t.habits {
		if t.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) persistHabits() {
	data, err := json.Marshal(t.habits)
	if err != nil {
		logger.Error("failed to serialize habits", "error", err)
		return
	}
	t.persist(fmt.Sprintf(constants.HabitsKeyFmt, t.userID), data)
}

func (t *Tracker) persistLogs() {
	data, err := json.Marshal(t.logs)
	if err != nil {
		logger.Error("failed to serialize logs", "error", err)
		return
	}
	t.persist(fmt.Sprintf(constants.LogsKeyFmt, t.userID), data)
}

// persist saves a snapshot in the background. Failures are logged and the
// in-memory state stands: the user keeps working and the next successful
// save catches up. Stale snapshots are dropped when a newer one for the
// same key has been queued.
func (t *Tracker) persist(key string, data []byte) {
	t.mu.Lock()
	t.saveSeq[key]++
	seq := t.saveSeq[key]
	t.mu.Unlock()

	t.saves.Add(1)
	go func() {
		defer t.saves.Done()
		t.mu.Lock()
		defer t.mu.Unlock()
		if seq < t.saveSeq[key] {
			return
		}
		if err := t.store.Put(key, data); err != nil {
			logger.Error("failed to persist", "key", key, "error", err)
		}
	}()
}

func loadBlob[T any](store storage.Provider, key string) ([]T, error) {
	data, err := store.Get(key)
	if err != nil {
		if err == storage.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("corrupt blob %q: %w", key, err)
	}
	return items, nil
}

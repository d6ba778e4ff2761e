package tracker

import (
	"path/filepath"
	"testing"

	"github.com/kmaguire/cadence/internal/constants"
	"github.com/kmaguire/cadence/internal/errors"
	"github.com/kmaguire/cadence/internal/storage"
	"github.com/kmaguire/cadence/internal/validation"
)

func habitInput(title string) validation.HabitInput {
	return validation.HabitInput{
		Title:       title,
		Description: "test habit",
		Frequency:   "daily",
	}
}

func setupTestTracker(t *testing.T, today string) *Tracker {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "cadence.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	tr := New(store, WithToday(func() string { return today }))
	if err := tr.SetUser("u1"); err != nil {
		t.Fatalf("SetUser() error = %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestOperationsRequireUser(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "cadence.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	tr := New(store)

	if _, err := tr.CreateHabit(habitInput("Read")); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("CreateHabit: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := tr.Habits(); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("Habits: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := tr.ToggleCompletion("h1", ""); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("ToggleCompletion: expected ErrUnauthenticated, got %v", err)
	}
	if err := tr.DeleteHabit("h1"); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("DeleteHabit: expected ErrUnauthenticated, got %v", err)
	}
}

func TestCreateHabitAssignsIdentity(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	habit, err := tr.CreateHabit(habitInput("Read"))
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}
	if habit.ID == "" {
		t.Error("expected a generated id")
	}
	if habit.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", habit.UserID)
	}
	if habit.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	// No logs are created alongside
	logs, err := tr.Logs(habit.ID)
	if err != nil {
		t.Fatalf("Logs() error = %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected no logs for a new habit, got %d", len(logs))
	}
}

func TestCreateHabitValidates(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	_, err := tr.CreateHabit(validation.HabitInput{Title: "", Description: "d", Frequency: "daily"})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestNewHabitHasZeroStats(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	habit, err := tr.CreateHabit(habitInput("Read"))
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}

	got, err := tr.Habit(habit.ID)
	if err != nil {
		t.Fatalf("Habit() error = %v", err)
	}
	if got.Streak != 0 || got.CompletedToday || got.CompletionRate != 0 {
		t.Errorf("stats = {streak:%d completedToday:%v rate:%v}, want all zero",
			got.Streak, got.CompletedToday, got.CompletionRate)
	}
}

func TestToggleIdempotentPair(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	habit, err := tr.CreateHabit(habitInput("Read"))
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}

	// First toggle on a day with no log creates a completed entry
	log, err := tr.ToggleCompletion(habit.ID, "2024-01-10")
	if err != nil {
		t.Fatalf("ToggleCompletion() error = %v", err)
	}
	if !log.Completed {
		t.Error("first toggle should mark completed")
	}

	// Second toggle flips it in place; the record is retained, not deleted
	log, err = tr.ToggleCompletion(habit.ID, "2024-01-10")
	if err != nil {
		t.Fatalf("ToggleCompletion() error = %v", err)
	}
	if log.Completed {
		t.Error("second toggle should flip to not completed")
	}

	logs, err := tr.Logs(habit.ID)
	if err != nil {
		t.Fatalf("Logs() error = %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected exactly one log after two toggles, got %d", len(logs))
	}
	if logs[0].Completed {
		t.Error("retained log should be marked not completed")
	}
}

func TestToggleNeverDuplicatesDay(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	habit, err := tr.CreateHabit(habitInput("Read"))
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := tr.ToggleCompletion(habit.ID, "2024-01-10"); err != nil {
			t.Fatalf("toggle %d error = %v", i, err)
		}
	}

	logs, _ := tr.Logs(habit.ID)
	if len(logs) != 1 {
		t.Errorf("expected one log per (habit, day), got %d", len(logs))
	}
	// Odd number of toggles leaves it completed
	if !logs[0].Completed {
		t.Error("expected completed after five toggles")
	}
}

func TestToggleUnknownHabit(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	if _, err := tr.ToggleCompletion("nope", "2024-01-10"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleRejectsMalformedDate(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	habit, _ := tr.CreateHabit(habitInput("Read"))
	if _, err := tr.ToggleCompletion(habit.ID, "10/01/2024"); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestToggleDefaultsToToday(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	habit, _ := tr.CreateHabit(habitInput("Read"))
	log, err := tr.ToggleCompletion(habit.ID, "")
	if err != nil {
		t.Fatalf("ToggleCompletion() error = %v", err)
	}
	if log.Day != "2024-01-10" {
		t.Errorf("Day = %q, want today (2024-01-10)", log.Day)
	}
}

func TestUpdateHabit(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	habit, _ := tr.CreateHabit(habitInput("Read"))

	title := "Read more"
	freq := constants.FrequencyWeekly
	days := []int{0, 6}
	updated, err := tr.UpdateHabit(habit.ID, HabitPatch{
		Title:      &title,
		Frequency:  &freq,
		TargetDays: &days,
	})
	if err != nil {
		t.Fatalf("UpdateHabit() error = %v", err)
	}

	if updated.Title != "Read more" {
		t.Errorf("Title = %q, want %q", updated.Title, "Read more")
	}
	if updated.Frequency != constants.FrequencyWeekly {
		t.Errorf("Frequency = %q, want weekly", updated.Frequency)
	}
	// Identity fields are untouched
	if updated.ID != habit.ID || updated.UserID != habit.UserID || !updated.CreatedAt.Equal(habit.CreatedAt) {
		t.Error("identity fields must be immutable across updates")
	}
}

func TestUpdateHabitNotFound(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	title := "x"
	if _, err := tr.UpdateHabit("nope", HabitPatch{Title: &title}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateHabitValidatesMergedState(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	habit, _ := tr.CreateHabit(habitInput("Read"))
	empty := ""
	if _, err := tr.UpdateHabit(habit.ID, HabitPatch{Title: &empty}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected ErrValidation for empty title, got %v", err)
	}
}

func TestDeleteHabitCascades(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	habit, _ := tr.CreateHabit(habitInput("Read"))
	other, _ := tr.CreateHabit(habitInput("Run"))

	tr.ToggleCompletion(habit.ID, "2024-01-09")
	tr.ToggleCompletion(habit.ID, "2024-01-10")
	tr.ToggleCompletion(other.ID, "2024-01-10")

	if err := tr.DeleteHabit(habit.ID); err != nil {
		t.Fatalf("DeleteHabit() error = %v", err)
	}

	if _, err := tr.Habit(habit.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected deleted habit to be gone, got %v", err)
	}

	logs, err := tr.Logs(habit.ID)
	if err != nil {
		t.Fatalf("Logs() error = %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected no logs after cascade, got %d", len(logs))
	}

	// The other habit's logs survive
	otherLogs, _ := tr.Logs(other.ID)
	if len(otherLogs) != 1 {
		t.Errorf("expected other habit's log to survive, got %d", len(otherLogs))
	}
}

func TestStreakContinuityAndReset(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	habit, _ := tr.CreateHabit(habitInput("Read"))
	for _, day := range []string{"2024-01-08", "2024-01-09", "2024-01-10"} {
		if _, err := tr.ToggleCompletion(habit.ID, day); err != nil {
			t.Fatalf("toggle %s error = %v", day, err)
		}
	}

	got, _ := tr.Habit(habit.ID)
	if got.Streak != 3 {
		t.Errorf("streak = %d, want 3", got.Streak)
	}

	// A completed day at D-4 (skipping D-3) does not change the streak
	tr.ToggleCompletion(habit.ID, "2024-01-06")
	got, _ = tr.Habit(habit.ID)
	if got.Streak != 3 {
		t.Errorf("streak after disconnected insert = %d, want 3", got.Streak)
	}

	// Flip today and yesterday off: most recent completion is now
	// 2024-01-08, two days back, so the streak resets.
	tr.ToggleCompletion(habit.ID, "2024-01-10")
	tr.ToggleCompletion(habit.ID, "2024-01-09")
	got, _ = tr.Habit(habit.ID)
	if got.Streak != 0 {
		t.Errorf("streak after reset = %d, want 0", got.Streak)
	}
}

func TestEndToEndScenario(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-02")

	habit, err := tr.CreateHabit(habitInput("Meditate"))
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}

	if _, err := tr.ToggleCompletion(habit.ID, "2024-01-01"); err != nil {
		t.Fatalf("toggle error = %v", err)
	}
	if _, err := tr.ToggleCompletion(habit.ID, "2024-01-02"); err != nil {
		t.Fatalf("toggle error = %v", err)
	}

	got, err := tr.Habit(habit.ID)
	if err != nil {
		t.Fatalf("Habit() error = %v", err)
	}
	if got.Streak != 2 {
		t.Errorf("streak = %d, want 2", got.Streak)
	}
	if !got.CompletedToday {
		t.Error("expected completedToday = true")
	}
	if got.CompletionRate != 100 {
		t.Errorf("completionRate = %v, want 100", got.CompletionRate)
	}
}

func TestHabitsPreserveInsertionOrder(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	titles := []string{"Read", "Run", "Write", "Sleep"}
	for _, title := range titles {
		if _, err := tr.CreateHabit(habitInput(title)); err != nil {
			t.Fatalf("CreateHabit(%s) error = %v", title, err)
		}
	}

	habits, err := tr.Habits()
	if err != nil {
		t.Fatalf("Habits() error = %v", err)
	}
	for i, want := range titles {
		if habits[i].Title != want {
			t.Errorf("habits[%d].Title = %q, want %q", i, habits[i].Title, want)
		}
	}
}

func TestUserSwitchSwapsCollections(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "cadence.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	tr := New(store, WithToday(func() string { return "2024-01-10" }))
	defer tr.Close()

	if err := tr.SetUser("alice"); err != nil {
		t.Fatalf("SetUser(alice) error = %v", err)
	}
	aliceHabit, err := tr.CreateHabit(habitInput("Alice reads"))
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}
	tr.ToggleCompletion(aliceHabit.ID, "2024-01-10")
	tr.Close() // drain saves before switching

	if err := tr.SetUser("bob"); err != nil {
		t.Fatalf("SetUser(bob) error = %v", err)
	}
	bobHabits, err := tr.Habits()
	if err != nil {
		t.Fatalf("Habits() error = %v", err)
	}
	if len(bobHabits) != 0 {
		t.Errorf("bob should see no habits, saw %d", len(bobHabits))
	}
	if _, err := tr.Logs(aliceHabit.ID); err != nil {
		t.Fatalf("Logs() error = %v", err)
	}

	// Switching back reloads alice's data from storage
	if err := tr.SetUser("alice"); err != nil {
		t.Fatalf("SetUser(alice) error = %v", err)
	}
	aliceHabits, err := tr.Habits()
	if err != nil {
		t.Fatalf("Habits() error = %v", err)
	}
	if len(aliceHabits) != 1 || aliceHabits[0].Title != "Alice reads" {
		t.Errorf("alice's habits not restored: %+v", aliceHabits)
	}
	if !aliceHabits[0].CompletedToday {
		t.Error("alice's completion not restored")
	}
}

func TestSignOutClearsState(t *testing.T) {
	tr := setupTestTracker(t, "2024-01-10")

	tr.CreateHabit(habitInput("Read"))
	if err := tr.SetUser(""); err != nil {
		t.Fatalf("SetUser(\"\") error = %v", err)
	}
	if _, err := tr.Habits(); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated after sign out, got %v", err)
	}
}

type fakeScheduler struct {
	scheduled map[string]string // token -> time
	canceled  []string
	nextToken string
}

func (f *fakeScheduler) Schedule(habitID, title, timeOfDay string) (string, error) {
	if f.scheduled == nil {
		f.scheduled = make(map[string]string)
	}
	f.scheduled[f.nextToken] = timeOfDay
	return f.nextToken, nil
}

func (f *fakeScheduler) Cancel(token string) error {
	f.canceled = append(f.canceled, token)
	return nil
}

func TestReminderLifecycle(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "cadence.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	sched := &fakeScheduler{nextToken: "tok-1"}
	tr := New(store,
		WithToday(func() string { return "2024-01-10" }),
		WithReminders(sched),
	)
	defer tr.Close()
	if err := tr.SetUser("u1"); err != nil {
		t.Fatalf("SetUser() error = %v", err)
	}

	in := habitInput("Meditate")
	in.Reminder = "07:30"
	habit, err := tr.CreateHabit(in)
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}
	if habit.ReminderRef != "tok-1" {
		t.Errorf("ReminderRef = %q, want tok-1", habit.ReminderRef)
	}

	// Changing the reminder cancels the old token and stores the new one
	sched.nextToken = "tok-2"
	newTime := "08:00"
	habit, err = tr.UpdateHabit(habit.ID, HabitPatch{Reminder: &newTime})
	if err != nil {
		t.Fatalf("UpdateHabit() error = %v", err)
	}
	if habit.ReminderRef != "tok-2" {
		t.Errorf("ReminderRef = %q, want tok-2", habit.ReminderRef)
	}
	if len(sched.canceled) != 1 || sched.canceled[0] != "tok-1" {
		t.Errorf("canceled = %v, want [tok-1]", sched.canceled)
	}

	// Deleting the habit forwards the token for cancellation
	if err := tr.DeleteHabit(habit.ID); err != nil {
		t.Fatalf("DeleteHabit() error = %v", err)
	}
	if len(sched.canceled) != 2 || sched.canceled[1] != "tok-2" {
		t.Errorf("canceled = %v, want [tok-1 tok-2]", sched.canceled)
	}
}

// Package tui is the interactive habit dashboard: every habit with its
// streak, completion rate, and today's status, with single-key toggling.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/kmaguire/cadence/internal/models"
	"github.com/kmaguire/cadence/internal/tracker"
	"github.com/kmaguire/cadence/internal/validation"
)

type sessionState int

const (
	stateList sessionState = iota
	stateAdd
)

type item struct {
	habit models.HabitWithStats
}

func (i item) Title() string {
	marker := "○"
	if i.habit.CompletedToday {
		marker = "✓"
	}
	return fmt.Sprintf("%s %s", marker, i.habit.Title)
}

func (i item) Description() string {
	streak := streakStyle.Render(fmt.Sprintf("streak %d", i.habit.Streak))
	return fmt.Sprintf("%s · %.0f%% · %s", streak, i.habit.CompletionRate, i.habit.Description)
}

func (i item) FilterValue() string { return i.habit.Title }

type keyMap struct {
	Toggle key.Binding
	Add    key.Binding
	Delete key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys("t", " "),
			key.WithHelp("t", "toggle today"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the root bubbletea model.
type Model struct {
	tracker *tracker.Tracker
	list    list.Model
	keys    keyMap
	state   sessionState
	form    *huh.Form
	input   *validation.HabitInput
	status  string
	width   int
	height  int
}

func NewModel(tr *tracker.Tracker) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(true)

	keys := defaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Add, keys.Delete, keys.Quit}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	m := Model{
		tracker: tr,
		list:    l,
		keys:    keys,
		state:   stateList,
	}
	m.reload()
	return m
}

func (m *Model) reload() {
	habits, err := m.tracker.Habits()
	if err != nil {
		m.status = err.Error()
		return
	}
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = item{habit: h}
	}
	m.list.SetItems(items)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-1)
	}

	switch m.state {
	case stateAdd:
		return m.updateAdd(msg)
	default:
		return m.updateList(msg)
	}
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The filter input owns the keyboard while filtering
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Toggle):
			if it, ok := m.list.SelectedItem().(item); ok {
				log, err := m.tracker.ToggleCompletion(it.habit.ID, "")
				if err != nil {
					m.status = err.Error()
				} else if log.Completed {
					m.status = fmt.Sprintf("%s: done today", it.habit.Title)
				} else {
					m.status = fmt.Sprintf("%s: marked missed", it.habit.Title)
				}
				m.reload()
			}
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if it, ok := m.list.SelectedItem().(item); ok {
				if err := m.tracker.DeleteHabit(it.habit.ID); err != nil {
					m.status = err.Error()
				} else {
					m.status = fmt.Sprintf("deleted %s", it.habit.Title)
				}
				m.reload()
			}
			return m, nil

		case key.Matches(msg, m.keys.Add):
			m.input = &validation.HabitInput{Frequency: "daily"}
			m.form = newHabitForm(m.input)
			m.state = stateAdd
			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if _, err := m.tracker.CreateHabit(*m.input); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("added %s", m.input.Title)
		}
		m.state = stateList
		m.reload()
		return m, nil
	case huh.StateAborted:
		m.state = stateList
		m.status = ""
		return m, nil
	}

	return m, cmd
}

func newHabitForm(input *validation.HabitInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&input.Title),
			huh.NewInput().
				Title("Description").
				Value(&input.Description),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", "daily"),
					huh.NewOption("Weekly", "weekly"),
				).
				Value(&input.Frequency),
			huh.NewInput().
				Title("Reminder (HH:MM, optional)").
				Value(&input.Reminder),
		),
	)
}

func (m Model) View() string {
	if m.state == stateAdd {
		return docStyle.Render(titleStyle.Render("New habit") + "\n\n" + m.form.View())
	}

	view := m.list.View()
	if m.status != "" {
		view += "\n" + statusStyle.Render(m.status)
	}
	return docStyle.Render(view)
}

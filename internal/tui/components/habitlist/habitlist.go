package habitlist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/smallwins/internal/models"
)

type AddHabitMsg struct{}

type IncrementHabitMsg struct {
	ID string
}

type UndoHabitMsg struct {
	ID string
}

type RenameHabitMsg struct {
	Habit models.Habit
}

type ArchiveHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

type SelectHabitMsg struct {
	ID string
}

type Item struct {
	Habit models.Habit
	Loc   *time.Location
}

func (i Item) Title() string {
	if i.Habit.Archived {
		return i.Habit.Name + " (archived)"
	}
	return i.Habit.Name
}

func (i Item) Description() string {
	last, ok := i.Habit.Latest()
	if !ok {
		return "no entries yet"
	}
	return fmt.Sprintf("%d entries | last %s", len(i.Habit.Logs), last.In(i.Loc).Format("2006-01-02 15:04"))
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add       key.Binding
	Increment key.Binding
	Undo      key.Binding
	Rename    key.Binding
	Archive   key.Binding
	Delete    key.Binding
	Select    key.Binding
	Archived  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Increment: key.NewBinding(
			key.WithKeys("+", " "),
			key.WithHelp("+/space", "record"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo last"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "stats"),
		),
		Archived: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "show/hide archived"),
		),
	}
}

type Model struct {
	list         list.Model
	keys         KeyMap
	loc          *time.Location
	habits       models.Collection
	showArchived bool
}

func New(habits models.Collection, loc *time.Location, width, height int) Model {
	if loc == nil {
		loc = time.Local
	}
	l := list.New(items(habits.Active(), loc), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Increment, keys.Select}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Increment, keys.Undo, keys.Rename, keys.Archive, keys.Delete, keys.Select, keys.Archived}
	}

	return Model{list: l, keys: keys, loc: loc, habits: habits}
}

func items(habits models.Collection, loc *time.Location) []list.Item {
	out := make([]list.Item, len(habits))
	for i, h := range habits {
		out[i] = Item{Habit: h, Loc: loc}
	}
	return out
}

// SetHabits replaces the listed habits. Archived habits are hidden unless
// ShowArchived is on.
func (m *Model) SetHabits(habits models.Collection) {
	m.habits = habits
	m.refresh()
}

func (m *Model) refresh() {
	visible := m.habits
	if !m.showArchived {
		visible = visible.Active()
	}
	m.list.SetItems(items(visible, m.loc))
}

// ShowArchived reports whether archived habits are listed.
func (m Model) ShowArchived() bool { return m.showArchived }

// Selected returns the highlighted habit.
func (m Model) Selected() (models.Habit, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.Habit{}, false
	}
	return i.Habit, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.keys.Add) {
			return m, func() tea.Msg { return AddHabitMsg{} }
		}
		if key.Matches(msg, m.keys.Archived) {
			m.showArchived = !m.showArchived
			m.refresh()
			return m, nil
		}
		if h, ok := m.Selected(); ok {
			switch {
			case key.Matches(msg, m.keys.Increment):
				return m, func() tea.Msg { return IncrementHabitMsg{ID: h.ID} }
			case key.Matches(msg, m.keys.Undo):
				return m, func() tea.Msg { return UndoHabitMsg{ID: h.ID} }
			case key.Matches(msg, m.keys.Rename):
				return m, func() tea.Msg { return RenameHabitMsg{Habit: h} }
			case key.Matches(msg, m.keys.Archive):
				return m, func() tea.Msg { return ArchiveHabitMsg{ID: h.ID} }
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteHabitMsg{ID: h.ID} }
			case key.Matches(msg, m.keys.Select):
				return m, func() tea.Msg { return SelectHabitMsg{ID: h.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		if !m.showArchived && len(m.habits) > 0 {
			return "\n  No active habits.\n  Press 'A' to show archived ones."
		}
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

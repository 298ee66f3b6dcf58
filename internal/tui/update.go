package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/smallwins/internal/habits"
	"github.com/julianstephens/smallwins/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.setSize()
		return m, nil
	}

	switch m.state {
	case StateAddHabit, StateRenameHabit:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if handled, cmd := m.handleHabitMessages(msg); handled {
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		}
		m.err = nil
	}

	var cmd tea.Cmd
	switch m.state {
	case StateHabits:
		m.habitList, cmd = m.habitList.Update(msg)
	case StateStats:
		if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.statsModel.Keys().Today) {
			m.statsModel.Reset(m.ctrl.Now())
			return m, nil
		}
		m.statsModel, cmd = m.statsModel.Update(msg)
	}
	return m, cmd
}

// dispatch applies a and refreshes the views. Failures are shown in the
// status line and leave the views as they were.
func (m *Model) dispatch(a habits.Action) bool {
	if _, err := m.ctrl.Dispatch(m.ctx, a); err != nil {
		m.err = err
		return false
	}
	m.err = nil
	m.refresh()
	return true
}

func (m *Model) handleHabitMessages(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{}
		m.form = newHabitForm("New habit", m.habitForm)
		m.state = StateAddHabit
		return true, m.form.Init()

	case habitlist.RenameHabitMsg:
		m.habitForm = &HabitFormModel{Name: msg.Habit.Name}
		m.habitToRenameID = msg.Habit.ID
		m.form = newHabitForm("Rename habit", m.habitForm)
		m.state = StateRenameHabit
		return true, m.form.Init()

	case habitlist.IncrementHabitMsg:
		m.dispatch(habits.IncrementHabit{HabitID: msg.ID})
		return true, nil

	case habitlist.UndoHabitMsg:
		m.dispatch(habits.DeleteLastEntry{HabitID: msg.ID})
		return true, nil

	case habitlist.ArchiveHabitMsg:
		m.dispatch(habits.ToggleArchive{HabitID: msg.ID})
		return true, nil

	case habitlist.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.state = StateConfirmDelete
		return true, nil

	case habitlist.SelectHabitMsg:
		if h, ok := m.ctrl.Collection().Get(msg.ID); ok {
			m.statsHabitID = h.ID
			m.statsModel.SetHabit(h)
			m.state = StateStats
		}
		return true, nil
	}
	return false, nil
}

func newHabitForm(title string, data *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&data.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name cannot be empty")
					}
					return nil
				}),
		),
	).WithShowHelp(false)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateHabits
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		var a habits.Action = habits.AddHabit{Name: m.habitForm.Name}
		if m.state == StateRenameHabit {
			a = habits.RenameHabit{HabitID: m.habitToRenameID, NewName: m.habitForm.Name}
		}
		if m.dispatch(a) {
			m.state = StateHabits
		} else {
			// Stay in the form so the user can correct the name
			m.form.State = huh.StateNormal
		}
	case huh.StateAborted:
		m.state = StateHabits
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if m.dispatch(habits.DeleteHabit{HabitID: m.habitToDeleteID}) && m.statsHabitID == m.habitToDeleteID {
			m.statsHabitID = ""
			m.statsModel.ClearHabit()
		}
		m.habitToDeleteID = ""
		m.state = StateHabits
	case key.Matches(keyMsg, m.keys.Cancel):
		m.habitToDeleteID = ""
		m.state = StateHabits
	}
	return m, nil
}

// Package tui is an interactive habit browser: a list for recording and
// managing habits and a stats pane that steps through period windows.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/smallwins/internal/app"
	"github.com/julianstephens/smallwins/internal/tui/components/habitlist"
	"github.com/julianstephens/smallwins/internal/tui/components/stats"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateStats
	StateAddHabit
	StateRenameHabit
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 2

type HabitFormModel struct {
	Name string
}

type Model struct {
	ctx             context.Context
	ctrl            *app.Controller
	state           SessionState
	keys            KeyMap
	help            help.Model
	habitList       habitlist.Model
	statsModel      stats.Model
	form            *huh.Form
	habitForm       *HabitFormModel
	habitToRenameID string
	habitToDeleteID string
	statsHabitID    string
	err             error
	quitting        bool
	width           int
	height          int
}

func NewModel(ctx context.Context, ctrl *app.Controller) Model {
	cal := ctrl.Calendar()
	return Model{
		ctx:        ctx,
		ctrl:       ctrl,
		state:      StateHabits,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		habitList:  habitlist.New(ctrl.Collection(), cal.Location(), 0, 0),
		statsModel: stats.New(cal, ctrl.Now(), 0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateStats {
		sk := m.statsModel.Keys()
		keys = append(keys, sk.Previous, sk.Next)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case StateHabits:
		hk := habitlist.DefaultKeyMap()
		actions = []key.Binding{hk.Add, hk.Increment, hk.Undo, hk.Rename, hk.Archive, hk.Delete, hk.Select, hk.Archived}
	case StateStats:
		actions = m.statsModel.Keys().Bindings()
	}
	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh reloads list and stats from the controller.
func (m *Model) refresh() {
	coll := m.ctrl.Collection()
	m.habitList.SetHabits(coll)
	if m.statsHabitID != "" {
		if h, ok := coll.Get(m.statsHabitID); ok {
			m.statsModel.SetHabit(h)
		}
	}
}

func (m *Model) setSize() {
	w, h := docStyle.GetFrameSize()
	// tabs and help take two lines each
	m.habitList.SetSize(m.width-w, m.height-h-4)
	m.statsModel.SetSize(m.width-w, m.height-h-4)
}

package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/smallwins/internal/aggregate"
	"github.com/julianstephens/smallwins/internal/calendar"
	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/navigator"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(6).
			Align(lipgloss.Right)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Width(6).
			Align(lipgloss.Right)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type KeyMap struct {
	Previous key.Binding
	Next     key.Binding
	Day      key.Binding
	Week     key.Binding
	Month    key.Binding
	Year     key.Binding
	Today    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Previous: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next"),
		),
		Day: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "day"),
		),
		Week: key.NewBinding(
			key.WithKeys("W"),
			key.WithHelp("W", "week"),
		),
		Month: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "month"),
		),
		Year: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "year"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
	}
}

// Bindings lists the keys for the main model's help view.
func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Previous, k.Next, k.Day, k.Week, k.Month, k.Year, k.Today}
}

type Model struct {
	viewport viewport.Model
	keys     KeyMap
	cal      calendar.Calendar
	nav      *navigator.Navigator
	habit    *models.Habit
}

func New(cal calendar.Calendar, now time.Time, width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
		cal:      cal,
		nav:      navigator.New(cal, now),
	}
}

func (m Model) Keys() KeyMap { return m.keys }

func (m Model) Navigator() *navigator.Navigator { return m.nav }

// SetHabit selects the habit whose logs are aggregated. The window is kept.
func (m *Model) SetHabit(h models.Habit) {
	m.habit = &h
	m.Render()
}

// ClearHabit drops the selected habit.
func (m *Model) ClearHabit() {
	m.habit = nil
	m.Render()
}

// Reset moves the window back to the one containing now, keeping the
// period type.
func (m *Model) Reset(now time.Time) {
	period := m.nav.Period()
	m.nav = navigator.New(m.cal, now)
	m.nav.SetPeriodType(period)
	m.Render()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		handled := true
		switch {
		case key.Matches(msg, m.keys.Previous):
			m.nav.Advance(navigator.Previous)
		case key.Matches(msg, m.keys.Next):
			m.nav.Advance(navigator.Next)
		case key.Matches(msg, m.keys.Day):
			m.nav.SetPeriodType(calendar.Day)
		case key.Matches(msg, m.keys.Week):
			m.nav.SetPeriodType(calendar.Week)
		case key.Matches(msg, m.keys.Month):
			m.nav.SetPeriodType(calendar.Month)
		case key.Matches(msg, m.keys.Year):
			m.nav.SetPeriodType(calendar.Year)
		default:
			handled = false
		}
		if handled {
			m.Render()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.habit == nil {
		return "\n  No habit selected.\n  Pick one on the Habits tab and press enter."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) Render() {
	if m.habit == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.content())
}

func (m *Model) content() string {
	buckets := m.nav.Aggregate(m.habit.Timestamps())
	summary := aggregate.Summarize(buckets)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s  (%s)\n\n", titleStyle.Render(m.habit.Name), m.nav.Title(), m.nav.Period())
	for _, bucket := range buckets {
		style := countStyle
		if bucket.Count == 0 {
			style = emptyStyle
		}
		label := bucket.Label
		if m.nav.Period() == calendar.Week || m.nav.Period() == calendar.Year {
			label = aggregate.ShortLabel(label)
		}
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render(label), style.Render(fmt.Sprint(bucket.Count)))
	}
	b.WriteString("\n")

	line := fmt.Sprintf("total %d", summary.Total)
	if summary.Total > 0 {
		line += fmt.Sprintf(" | peak %s (%d)", summary.Peak.Label, summary.Peak.Count)
	}
	b.WriteString(summaryStyle.Render(line))
	return b.String()
}

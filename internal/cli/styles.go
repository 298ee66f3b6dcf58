package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gosuri/uitable"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = headerStyle.Render(h)
	}
	tbl.AddRow(row...)
	return tbl
}

func success(msg string) string { return successStyle.Render("✓ ") + msg }

package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#8BC34A")
	colorPrimary = lipgloss.Color("#101F38")
	colorMuted   = lipgloss.Color("#8a94a6")
	colorBorder  = lipgloss.Color("#2a3850")
	colorError   = lipgloss.Color("#e53935")
	colorFilled  = lipgloss.Color("#4db6ac")
)

const cellWidth = 16

// Styles groups every style the views use.
type Styles struct {
	TopBar      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	WeekLabel   lipgloss.Style
	DayHeader   lipgloss.Style
	RowLabel    lipgloss.Style
	CellEmpty   lipgloss.Style
	CellFilled  lipgloss.Style
	CellCursor  lipgloss.Style
	Modal       lipgloss.Style
	Title       lipgloss.Style
	Selected    lipgloss.Style
	Error       lipgloss.Style
	Muted       lipgloss.Style
	Help        lipgloss.Style
}

func DefaultStyles() Styles {
	cell := lipgloss.NewStyle().Width(cellWidth).MaxWidth(cellWidth).Padding(0, 1)
	return Styles{
		TopBar:      lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(colorBorder).MarginBottom(1),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Background(colorAccent).Padding(0, 2),
		TabInactive: lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 2),
		WeekLabel:   lipgloss.NewStyle().Bold(true).MarginBottom(1),
		DayHeader:   cell.Bold(true).Align(lipgloss.Center),
		RowLabel:    lipgloss.NewStyle().Width(18).Bold(true),
		CellEmpty:   cell.Foreground(colorMuted).Align(lipgloss.Center),
		CellFilled:  cell.Foreground(colorFilled),
		CellCursor:  cell.Reverse(true),
		Modal:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2).MarginTop(1),
		Title:       lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1),
		Selected:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Error:       lipgloss.NewStyle().Foreground(colorError),
		Muted:       lipgloss.NewStyle().Foreground(colorMuted),
		Help:        lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

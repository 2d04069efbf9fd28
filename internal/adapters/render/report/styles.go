package report

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	column  lipgloss.Style
	id      lipgloss.Style
	detail  lipgloss.Style
	meta    lipgloss.Style
	empty   lipgloss.Style
	copying lipgloss.Style
	idle    lipgloss.Style
	failed  lipgloss.Style
	demo    lipgloss.Style
	section lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		column:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Underline(true),
		id:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		empty:   lipgloss.NewStyle().Faint(true),
		copying: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		idle:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		failed:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		demo:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		section: lipgloss.NewStyle().MarginTop(1),
	}
}

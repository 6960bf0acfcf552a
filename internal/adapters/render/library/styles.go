package library

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	story     lipgloss.Style
	id        lipgloss.Style
	detail    lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
	player    lipgloss.Style
	narrator  lipgloss.Style
	message   lipgloss.Style
	timestamp lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		story:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		id:        lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
		player:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		narrator:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("222")),
		message:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2),
		timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

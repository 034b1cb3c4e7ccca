package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedPanelStyle = panelStyle.
				BorderForeground(lipgloss.Color("205"))

	queryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusColors = map[string]lipgloss.Style{
		"none":      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		"submitted": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"running":   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"ready":     lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		"error":     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		"expired":   lipgloss.NewStyle().Foreground(lipgloss.Color("99")),
	}
)

// statusStyle returns the style for a status name.
func statusStyle(name string) lipgloss.Style {
	if s, ok := statusColors[name]; ok {
		return s
	}
	return mutedStyle
}

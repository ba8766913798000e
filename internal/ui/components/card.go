package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for stacked sections
// so their boxes line up.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 72)
}

// Card wraps content in a rounded-border box of width cw.
func Card(content string, cw int) string {
	return theme.Card.
		Width(cw).
		Render(content)
}

// StatTile renders a small labelled figure for dashboard rows.
func StatTile(label, value string, valueColor lipgloss.Style, width int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		valueColor.Bold(true).Render(value),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(label),
	)
	return theme.Card.
		Width(width).
		Align(lipgloss.Center).
		Render(body)
}

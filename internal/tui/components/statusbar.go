package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left, a
// flash message (green, or orange when isErr) on the right.
func RenderStatusBar(width int, hints, flash string, isErr bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	flashColor := t.Green
	if isErr {
		flashColor = t.Orange
	}
	flashStyle := lipgloss.NewStyle().Foreground(flashColor).Background(t.Surface)

	left := " " + hints
	right := ""
	if flash != "" {
		right = flashStyle.Render(flash) + " "
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return style.Render(left + strings.Repeat(" ", padding) + right)
}

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: '1'},
	{Name: "Expenses", Key: '2'},
	{Name: "Budget", Key: '3'},
	{Name: "Alerts", Key: '4'},
	{Name: "Settings", Key: '5'},
}

// TabVisualWidth is the rendered width of a tab. Inactive tabs carry a
// "[n]" shortcut hint.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active {
		w += 3
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index. badge is
// appended to the Alerts tab when positive.
func RenderTabBar(activeIdx, width, alertBadge int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	sepStyle := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}
		parts = append(parts, keyStyle.Render("["+string(tab.Key)+"]")+inactiveStyle.Render(tab.Name))
	}

	bar := strings.Join(parts, sepStyle.Render(" "))
	if alertBadge > 0 {
		badge := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
		bar += sepStyle.Render("  ") + badge.Render("● "+strconv.Itoa(alertBadge)+" alert"+plural(alertBadge))
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

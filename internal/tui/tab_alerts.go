package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

type alertsState struct {
	cursor  int
	showAll bool
}

func (s *alertsState) clamp(n int) {
	s.cursor = min(max(s.cursor, 0), max(n-1, 0))
}

func (s *alertsState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

// alertList returns the alerts the Alerts tab shows: visible ones, or every
// alert including dismissed ones when showAll is on.
func (a App) alertList() []model.Alert {
	if a.alerts.showAll {
		return a.state.Alerts
	}
	return budget.Visible(a.state.Alerts)
}

func (a *App) alertsKey(key string) bool {
	list := a.alertList()
	switch key {
	case "j", "down":
		a.alerts.move(1, len(list))
	case "k", "up":
		a.alerts.move(-1, len(list))
	case "h":
		a.alerts.showAll = !a.alerts.showAll
		a.alerts.clamp(len(a.alertList()))
	case "d", "x":
		if len(list) == 0 {
			return true
		}
		sel := list[a.alerts.cursor]
		if sel.Dismissed {
			return true
		}
		a.apply(budget.DismissAlertEvent{ID: sel.ID}, "Dismissed "+sel.Title)
	default:
		return false
	}
	return true
}

func alertColor(k model.AlertKind) lipgloss.Color {
	t := theme.Active
	switch k {
	case model.AlertDanger:
		return t.Red
	case model.AlertWarning:
		return t.Orange
	case model.AlertSuccess:
		return t.GreenBright
	default:
		return t.Blue
	}
}

func alertIcon(k model.AlertKind) string {
	switch k {
	case model.AlertDanger:
		return "!!"
	case model.AlertWarning:
		return "! "
	case model.AlertSuccess:
		return "✓ "
	default:
		return "i "
	}
}

func (a App) renderAlertsTab(cw int) string {
	t := theme.Active
	list := a.alertList()

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	innerW := components.CardInnerWidth(cw)

	var body strings.Builder
	if len(list) == 0 {
		body.WriteString(mutedStyle.Render("No alerts. Spending is within your thresholds."))
	}
	for i, al := range list {
		bg := t.Surface
		if i == a.alerts.cursor {
			bg = t.SurfaceBright
		}
		iconStyle := lipgloss.NewStyle().Foreground(alertColor(al.Kind)).Background(bg).Bold(true)
		titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg).Bold(i == a.alerts.cursor)
		dateStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(bg)

		title := al.Title
		if al.Dismissed {
			title += " (dismissed)"
		}
		line := iconStyle.Render(alertIcon(al.Kind)+" ") + titleStyle.Render(title)
		date := dateStyle.Render(al.Date)
		gap := max(innerW-lipgloss.Width(line)-lipgloss.Width(date), 1)
		line += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", gap)) + date
		body.WriteString(line)
		body.WriteString("\n")
		body.WriteString(textStyle.Render("   " + al.Description))
		body.WriteString("\n")
		if i < len(list)-1 {
			body.WriteString("\n")
		}
	}
	body.WriteString("\n")
	filter := "showing active"
	if a.alerts.showAll {
		filter = "showing all"
	}
	body.WriteString(dimStyle.Render(fmt.Sprintf("%s  [d] dismiss  [h] toggle dismissed", filter)))

	th := a.state.Thresholds
	title := fmt.Sprintf("Alerts (warning %d%%, danger %d%%)", th.Warning, th.Danger)
	return components.ContentCard(title, body.String(), cw)
}

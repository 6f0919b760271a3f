package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

const (
	settingsFieldIncome = iota
	settingsFieldSavingsGoal
	settingsFieldAddSavings
	settingsFieldWarning
	settingsFieldDanger
	settingsFieldSavingsAlerts
	settingsFieldSavingsNotify
	settingsFieldThemeMode
	settingsFieldPalette
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 30
	return ti
}

func (a *App) settingsKey(key string) (bool, tea.Cmd) {
	switch key {
	case "j", "down":
		a.settings.cursor = min(a.settings.cursor+1, settingsFieldCount-1)
	case "k", "up":
		a.settings.cursor = max(a.settings.cursor-1, 0)
	case "enter", " ":
		return true, a.settingsActivate()
	default:
		return false, nil
	}
	return true, nil
}

// settingsActivate toggles boolean fields in place and opens the text input
// for everything else.
func (a *App) settingsActivate() tea.Cmd {
	th := a.state.Thresholds
	switch a.settings.cursor {
	case settingsFieldSavingsAlerts:
		th.SavingsGoalEnabled = !th.SavingsGoalEnabled
		a.apply(budget.UpdateThresholds{Thresholds: th}, "Savings goal alerts "+onOff(th.SavingsGoalEnabled))
		return nil
	case settingsFieldSavingsNotify:
		th.SavingsNotifications = !th.SavingsNotifications
		a.apply(budget.UpdateThresholds{Thresholds: th}, "Savings notifications "+onOff(th.SavingsNotifications))
		return nil
	case settingsFieldThemeMode:
		mode := model.ThemeLight
		if a.state.Theme == model.ThemeLight {
			mode = model.ThemeDark
		}
		a.apply(budget.SetTheme{Mode: mode}, "Theme: "+string(mode))
		return nil
	case settingsFieldPalette:
		a.cyclePalette()
		return nil
	case settingsFieldAutoRefresh:
		a.autoRefresh = !a.autoRefresh
		a.cfg.TUI.AutoRefresh = a.autoRefresh
		a.persistConfig()
		return nil
	}

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldIncome:
		ti.Placeholder = "monthly income"
		ti.SetValue(a.state.Income.String())
	case settingsFieldSavingsGoal:
		ti.Placeholder = "target amount"
		ti.SetValue(a.state.Savings.Target.String())
	case settingsFieldAddSavings:
		ti.Placeholder = "amount (negative to withdraw)"
	case settingsFieldWarning:
		ti.Placeholder = "percent"
		ti.SetValue(strconv.Itoa(th.Warning))
	case settingsFieldDanger:
		ti.Placeholder = "percent"
		ti.SetValue(strconv.Itoa(th.Danger))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "30 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}
	ti.Focus()
	a.settings.input = ti
	a.settings.editing = true
	return textinput.Blink
}

// cyclePalette steps through the dark palettes. Light mode always uses the
// light palette, so the choice only shows once dark mode is on.
func (a *App) cyclePalette() {
	var dark []string
	for _, t := range theme.All {
		if t.Mode == model.ThemeDark {
			dark = append(dark, t.Name)
		}
	}
	next := dark[(slices.Index(dark, a.cfg.Appearance.Theme)+1)%len(dark)]
	a.cfg.Appearance.Theme = next
	theme.Apply(a.state.Theme, next)
	a.persistConfig()
	a.setFlash("Palette: "+next, false)
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a *App) settingsSave() {
	val := strings.TrimSpace(a.settings.input.Value())
	th := a.state.Thresholds

	switch a.settings.cursor {
	case settingsFieldIncome:
		amount, err := session.ParseAmount(val)
		if err != nil {
			a.setFlash(err.Error(), true)
			return
		}
		a.apply(budget.SetIncome{Amount: amount, Source: "settings"}, "Income set to "+moneyStr(amount))
	case settingsFieldSavingsGoal:
		amount, err := session.ParseAmount(val)
		if err != nil {
			a.setFlash(err.Error(), true)
			return
		}
		a.apply(budget.SetSavingsGoal{Target: amount}, "Savings goal set to "+moneyStr(amount))
	case settingsFieldAddSavings:
		amount, err := decimal.NewFromString(val)
		if err != nil {
			a.setFlash("not a number: "+val, true)
			return
		}
		a.apply(budget.AddSavingsProgress{Amount: amount}, "Savings updated by "+moneyStr(amount))
	case settingsFieldWarning, settingsFieldDanger:
		pct, err := strconv.Atoi(val)
		if err != nil {
			a.setFlash("not a whole percentage: "+val, true)
			return
		}
		if a.settings.cursor == settingsFieldWarning {
			th.Warning = pct
		} else {
			th.Danger = pct
		}
		a.apply(budget.UpdateThresholds{Thresholds: th}, fmt.Sprintf("Thresholds: warning %d%%, danger %d%%", th.Warning, th.Danger))
	case settingsFieldRefreshInterval:
		secs, err := strconv.Atoi(val)
		if err != nil || secs < 10 {
			a.setFlash("refresh interval must be at least 10 seconds", true)
			return
		}
		a.refreshInterval = time.Duration(secs) * time.Second
		a.cfg.TUI.RefreshInterval = secs
		a.persistConfig()
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func moneyStr(d decimal.Decimal) string {
	return cli.FormatMoney(d)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	th := a.state.Thresholds

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	type field struct {
		label string
		value string
	}

	palette := a.cfg.Appearance.Theme
	if palette == "" {
		palette = theme.FlexokiDark.Name
	}
	fields := []field{
		{"Monthly Income", moneyStr(a.state.Income)},
		{"Savings Goal", moneyStr(a.state.Savings.Target)},
		{"Add Savings", "saved " + moneyStr(a.state.Savings.Progress)},
		{"Warning At", fmt.Sprintf("%d%%", th.Warning)},
		{"Danger At", fmt.Sprintf("%d%%", th.Danger)},
		{"Savings Alerts", onOff(th.SavingsGoalEnabled)},
		{"Savings Notices", onOff(th.SavingsNotifications)},
		{"Theme", string(a.state.Theme)},
		{"Dark Palette", palette},
		{"Auto Refresh", onOff(a.autoRefresh)},
		{"Refresh Interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := innerW - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit or toggle  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Database:     ") + valueStyle.Render(a.cfg.DBPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.ConfigPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Expenses:     ") + valueStyle.Render(cli.FormatNumber(int64(len(a.state.Expenses)))) + "\n")
	infoBody.WriteString(labelStyle.Render("Income log:   ") + valueStyle.Render(cli.FormatNumber(int64(len(a.state.IncomeHistory)))))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}

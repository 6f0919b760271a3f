// Package tui provides the interactive Bubble Tea dashboard for cbudget.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabExpenses
	tabBudget
	tabAlerts
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160

	minContentHeight = 5
	flashDuration    = 3 * time.Second
)

// App is the root Bubble Tea model. Every mutation goes through the session,
// and the cached state is refreshed from it afterwards.
type App struct {
	sess       *session.Session
	cfg        config.Config
	saveConfig func(config.Config) error

	state    model.State
	overview budget.Overview

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	flash    string
	flashErr bool
	flashAt  time.Time

	// Per-tab state
	expenses expensesState
	alloc    allocState
	alerts   alertsState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool
}

// NewApp creates a new TUI app model over an open session.
func NewApp(sess *session.Session, cfg config.Config) App {
	refreshInterval := time.Duration(cfg.TUI.RefreshInterval) * time.Second
	if refreshInterval < 10*time.Second {
		refreshInterval = 30 * time.Second
	}

	a := App{
		sess:            sess,
		cfg:             cfg,
		saveConfig:      config.Save,
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		lastRefresh:     time.Now(),
		needSetup:       sess.Fresh(),
	}
	a.sync()
	if a.needSetup {
		a.setupVals = &setupValues{theme: a.state.Theme, palette: cfg.Appearance.Theme}
		a.setupForm = newSetupForm(a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion, tickCmd()}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// sync refreshes the cached state and derived views after a change.
func (a *App) sync() {
	a.state = a.sess.State()
	a.overview = budget.ComputeOverview(a.state)
	theme.Apply(a.state.Theme, a.cfg.Appearance.Theme)

	a.expenses.clamp(len(a.state.Expenses))
	a.alerts.clamp(len(a.alertList()))
	if !a.alloc.dirty {
		a.alloc.reset(a.state.Categories)
	}
}

// apply routes ev through the session and reports the outcome in the status bar.
func (a *App) apply(ev budget.Event, okMsg string) bool {
	fx, err := a.sess.Apply(ev)
	if err != nil {
		a.setFlash(err.Error(), true)
		return false
	}
	a.sync()
	msg := okMsg
	for _, n := range fx.Notices {
		msg = n.Error()
	}
	a.setFlash(msg, len(fx.Notices) > 0)
	return true
}

func (a *App) setFlash(msg string, isErr bool) {
	a.flash = msg
	a.flashErr = isErr
	a.flashAt = time.Now()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.expenses.form != nil {
			a.expenses.form = a.expenses.form.WithWidth(min(msg.Width, 72))
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.modal() {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.expenses.form != nil {
			return a.updateExpenseForm(msg)
		}
		if a.activeTab == tabSettings && a.settings.editing {
			return a.updateSettingsInput(msg)
		}
		return a.updateKey(msg)

	case tickMsg:
		if !a.flashAt.IsZero() && time.Since(a.flashAt) > flashDuration {
			a.flash = ""
			a.flashAt = time.Time{}
		}
		if a.autoRefresh && !a.modal() && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.reload()
		}
		return a, tickCmd()
	}

	// Forward unhandled messages to an active form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.expenses.form != nil {
		return a.updateExpenseForm(msg)
	}
	if a.settings.editing {
		var cmd tea.Cmd
		a.settings.input, cmd = a.settings.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// modal reports whether a form or text input owns the keyboard.
func (a App) modal() bool {
	return (a.needSetup && a.setupForm != nil) || a.expenses.form != nil || a.settings.editing
}

// reload re-reads the store, picking up changes made by other cbudget processes.
func (a *App) reload() {
	a.lastRefresh = time.Now()
	if err := a.sess.Reload(); err != nil {
		a.setFlash("reload failed: "+err.Error(), true)
		return
	}
	a.sync()
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// Tab-specific bindings take precedence over globals.
	var (
		handled bool
		cmd     tea.Cmd
	)
	switch a.activeTab {
	case tabExpenses:
		handled, cmd = a.expensesKey(key)
	case tabBudget:
		handled = a.allocKey(key)
	case tabAlerts:
		handled = a.alertsKey(key)
	case tabSettings:
		handled, cmd = a.settingsKey(key)
	}
	if handled {
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		a.reload()
		a.setFlash("Reloaded", false)
	case "R":
		a.autoRefresh = !a.autoRefresh
		a.cfg.TUI.AutoRefresh = a.autoRefresh
		a.persistConfig()
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.scroll(-1)
	case tea.MouseButtonWheelDown:
		a.scroll(1)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a *App) scroll(delta int) {
	switch a.activeTab {
	case tabExpenses:
		a.expenses.move(delta, len(a.state.Expenses))
		a.expenses.follow(a.expenseRows(), len(a.state.Expenses))
	case tabBudget:
		a.alloc.move(delta)
	case tabAlerts:
		a.alerts.move(delta, len(a.alertList()))
	case tabSettings:
		a.settings.cursor = min(max(a.settings.cursor+delta, 0), settingsFieldCount-1)
	}
}

// persistConfig saves the config file, best-effort.
func (a *App) persistConfig() {
	if a.saveConfig == nil {
		return
	}
	if err := a.saveConfig(a.cfg); err != nil {
		a.setFlash("saving config failed: "+err.Error(), true)
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.setupForm != nil {
		return a.viewSetup()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  cbudget needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"1-5", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move selection"},
		}},
		{"Budget", [][2]string{
			{"a", "Add expense (Expenses)"},
			{"+ -", "Adjust percentage (Budget)"},
			{"Enter", "Save allocation / edit setting"},
			{"D", "Reset allocation to defaults"},
			{"d", "Dismiss alert (Alerts)"},
		}},
		{"General", [][2]string{
			{"r", "Reload from disk"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w, a.overview.AlertCount)
	statusBar := components.RenderStatusBar(w, a.statusHints(), a.flash, a.flashErr)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabExpenses:
		content = a.renderExpensesTab(cw, contentH)
	case tabBudget:
		content = a.renderBudgetTab(cw)
	case tabAlerts:
		content = a.renderAlertsTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusHints() string {
	refresh := "off"
	if a.autoRefresh {
		refresh = fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))
	}
	return fmt.Sprintf("[?]help  [q]uit  [r]eload  auto:%s", refresh)
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// listWindow returns the [start, end) slice of n rows to show so that cursor
// stays visible within height rows.
func listWindow(cursor, offset, n, height int) (int, int) {
	height = max(height, 1)
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+height {
		offset = cursor - height + 1
	}
	offset = max(offset, 0)
	return offset, min(offset+height, n)
}

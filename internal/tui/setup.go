package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// setupValues holds the first-run answers. The form binds to these fields,
// so the struct lives behind a pointer that survives App copies.
type setupValues struct {
	income  string
	theme   model.ThemeMode
	palette string
}

func newSetupForm(v *setupValues) *huh.Form {
	var darkPalettes []huh.Option[string]
	for _, t := range theme.All {
		if t.Mode == model.ThemeDark {
			darkPalettes = append(darkPalettes, huh.NewOption(t.Name, t.Name))
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cbudget!").
				Description("Start with your monthly income. Your budget is split\nacross six default categories that you can adjust later."),
			huh.NewInput().
				Title("Monthly income").
				Placeholder("3000").
				Value(&v.income).
				Validate(validateAmount),
		),
		huh.NewGroup(
			huh.NewSelect[model.ThemeMode]().
				Title("Theme").
				Options(
					huh.NewOption("Dark", model.ThemeDark),
					huh.NewOption("Light", model.ThemeLight),
				).
				Value(&v.theme),
			huh.NewSelect[string]().
				Title("Dark palette").
				Options(darkPalettes...).
				Value(&v.palette),
		),
	).WithShowHelp(true)
}

func validateAmount(s string) error {
	_, err := session.ParseAmount(strings.TrimSpace(s))
	return err
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.finishSetup()
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// finishSetup applies the wizard answers through the session.
func (a *App) finishSetup() {
	v := a.setupVals
	a.needSetup = false
	a.setupForm = nil

	if amount, err := session.ParseAmount(strings.TrimSpace(v.income)); err == nil {
		if !a.apply(budget.SetIncome{Amount: amount, Source: "setup"}, "") {
			return
		}
	}
	if v.theme.Valid() && v.theme != a.state.Theme {
		if !a.apply(budget.SetTheme{Mode: v.theme}, "") {
			return
		}
	}
	if v.palette != "" && v.palette != a.cfg.Appearance.Theme {
		a.cfg.Appearance.Theme = v.palette
		a.persistConfig()
		a.sync()
	}
	a.setFlash(fmt.Sprintf("Budget ready: %s income", moneyStr(a.state.Income)), false)
}

func (a App) viewSetup() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.setupForm.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

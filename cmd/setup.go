package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	return withSession(func(sess *session.Session) error {
		st := sess.State()
		cfg := appCfg

		income := ""
		if st.Income.IsPositive() {
			income = st.Income.String()
		}
		warning := strconv.Itoa(st.Thresholds.Warning)
		danger := strconv.Itoa(st.Thresholds.Danger)
		mode := st.Theme
		palette := cfg.Appearance.Theme

		var palettes []huh.Option[string]
		for _, t := range theme.All {
			if t.Mode == model.ThemeDark {
				palettes = append(palettes, huh.NewOption(t.Name, t.Name))
			}
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewNote().
					Title("Welcome to cbudget!").
					Description(fmt.Sprintf("Your budget is stored in %s.", cfg.DBPath())),
				huh.NewInput().
					Title("Monthly income").
					Placeholder("3000").
					Value(&income).
					Validate(func(s string) error {
						_, err := session.ParseAmount(strings.TrimSpace(s))
						return err
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Warn when a category reaches (%)").
					Value(&warning).
					Validate(validatePercent),
				huh.NewInput().
					Title("Flag a category as exceeded at (%)").
					Value(&danger).
					Validate(validatePercent),
			),
			huh.NewGroup(
				huh.NewSelect[model.ThemeMode]().
					Title("Theme").
					Options(
						huh.NewOption("Dark", model.ThemeDark),
						huh.NewOption("Light", model.ThemeLight),
					).
					Value(&mode),
				huh.NewSelect[string]().
					Title("Dark palette").
					Options(palettes...).
					Value(&palette),
			),
		)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Setup cancelled.")
				return nil
			}
			return err
		}

		amount, _ := session.ParseAmount(strings.TrimSpace(income))
		w, _ := strconv.Atoi(strings.TrimSpace(warning))
		d, _ := strconv.Atoi(strings.TrimSpace(danger))
		th := st.Thresholds
		th.Warning, th.Danger = w, d

		events := []budget.Event{
			budget.SetIncome{Amount: amount, Source: "setup"},
			budget.UpdateThresholds{Thresholds: th},
			budget.SetTheme{Mode: mode},
		}
		for _, ev := range events {
			if _, err := sess.Apply(ev); err != nil {
				return err
			}
		}

		cfg.Appearance.Theme = palette
		cfg.Alerts.Warning, cfg.Alerts.Danger = w, d
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println()
		fmt.Printf("  Saved to %s\n", config.ConfigPath())
		fmt.Println("  Run `cbudget setup` anytime to reconfigure, or `cbudget tui` for the dashboard.")
		fmt.Println()
		return nil
	})
}

func validatePercent(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a whole, positive percentage")
	}
	return nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Show or change the stored light/dark mode",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"light", "dark", "toggle"},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(_ *cobra.Command, args []string) error {
	return withSession(func(sess *session.Session) error {
		current := sess.State().Theme
		if len(args) == 0 {
			fmt.Printf("  Theme: %s (palette %s)\n", current, theme.ForMode(current, appCfg.Appearance.Theme).Name)
			info("Palettes: %s", strings.Join(theme.Names(), ", "))
			return nil
		}

		mode := model.ThemeMode(args[0])
		if args[0] == "toggle" {
			mode = model.ThemeLight
			if current == model.ThemeLight {
				mode = model.ThemeDark
			}
		}
		if _, err := sess.Apply(budget.SetTheme{Mode: mode}); err != nil {
			return err
		}
		info("Theme: %s", mode)
		return nil
	})
}

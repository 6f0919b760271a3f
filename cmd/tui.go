package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Log lines on stderr would draw over the alt screen.
	if appCfg.Log.Level != "debug" {
		appLog = zerolog.Nop()
	}

	return withSession(func(sess *session.Session) error {
		// Force TrueColor profile so all background styling produces ANSI codes
		// Without this, lipgloss may default to Ascii profile (no colors)
		lipgloss.SetColorProfile(termenv.TrueColor)

		app := tui.NewApp(sess, appCfg)
		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})
}

// Package cmd implements the cbudget CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:      %s\n", cfg.DBPath())
	fmt.Printf("    Report months: %d\n", cfg.General.ReportMonths)
	fmt.Println()

	fmt.Println("  [Alerts] (defaults for a new budget)")
	fmt.Printf("    Warning:               %d%%\n", cfg.Alerts.Warning)
	fmt.Printf("    Danger:                %d%%\n", cfg.Alerts.Danger)
	fmt.Printf("    Savings goal alerts:   %v\n", cfg.Alerts.SavingsGoalEnabled)
	fmt.Printf("    Savings notifications: %v\n", cfg.Alerts.SavingsNotifications)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Dark palette: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh:     %v\n", cfg.TUI.AutoRefresh)
	fmt.Printf("    Refresh interval: %ds\n", cfg.TUI.RefreshInterval)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll interval: %ds\n", cfg.Daemon.PollInterval)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Pretty: %v\n", cfg.Log.Pretty)
	fmt.Println()

	fmt.Println("  Run `cbudget setup` to reconfigure.")
	return nil
}

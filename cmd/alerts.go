package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/session"
)

var (
	flagAlertsAll bool

	flagWarning       int
	flagDanger        int
	flagSavingsGoal   bool
	flagSavingsNotify bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List budget alerts",
	RunE:  runAlerts,
}

var alertsDismissCmd = &cobra.Command{
	Use:   "dismiss <id>",
	Short: "Dismiss an alert by id (e.g. warning:Food)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsDismiss,
}

var alertsThresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Show or change alert thresholds",
	RunE:  runAlertsThresholds,
}

func init() {
	alertsCmd.Flags().BoolVarP(&flagAlertsAll, "all", "a", false, "Include dismissed alerts")

	f := alertsThresholdsCmd.Flags()
	f.IntVar(&flagWarning, "warning", 0, "Warn at this percent of a category's allocation")
	f.IntVar(&flagDanger, "danger", 0, "Alert as exceeded at this percent")
	f.BoolVar(&flagSavingsGoal, "savings-goal", true, "Enable savings goal alerts")
	f.BoolVar(&flagSavingsNotify, "savings-notify", true, "Enable savings progress notifications")

	alertsCmd.AddCommand(alertsDismissCmd, alertsThresholdsCmd)
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(_ *cobra.Command, _ []string) error {
	return withSession(func(sess *session.Session) error {
		alerts := sess.State().Alerts
		if !flagAlertsAll {
			alerts = budget.Visible(alerts)
		}
		if len(alerts) == 0 {
			fmt.Println("\n  No alerts.")
			return nil
		}
		fmt.Println()
		for _, a := range alerts {
			fmt.Println("  " + cli.RenderAlert(a))
			fmt.Println("     " + cli.RenderMuted(a.ID+"  since "+a.Date))
		}
		return nil
	})
}

func runAlertsDismiss(_ *cobra.Command, args []string) error {
	return withSession(func(sess *session.Session) error {
		if _, err := sess.Apply(budget.DismissAlertEvent{ID: args[0]}); err != nil {
			return err
		}
		info("Dismissed %s", args[0])
		return nil
	})
}

func runAlertsThresholds(cmd *cobra.Command, _ []string) error {
	return withSession(func(sess *session.Session) error {
		th := sess.State().Thresholds
		changed := false
		f := cmd.Flags()
		if f.Changed("warning") {
			th.Warning, changed = flagWarning, true
		}
		if f.Changed("danger") {
			th.Danger, changed = flagDanger, true
		}
		if f.Changed("savings-goal") {
			th.SavingsGoalEnabled, changed = flagSavingsGoal, true
		}
		if f.Changed("savings-notify") {
			th.SavingsNotifications, changed = flagSavingsNotify, true
		}
		if changed {
			if _, err := sess.Apply(budget.UpdateThresholds{Thresholds: th}); err != nil {
				return err
			}
			info("Thresholds updated")
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Setting", "Value"},
			Rows: [][]string{
				{"Warning", cli.FormatPercent(th.Warning)},
				{"Danger", cli.FormatPercent(th.Danger)},
				{"Savings goal alerts", fmt.Sprint(th.SavingsGoalEnabled)},
				{"Savings notifications", fmt.Sprint(th.SavingsNotifications)},
			},
		}))
		return nil
	})
}

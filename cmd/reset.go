package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/session"
)

var flagResetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all budget data (income, expenses, allocation, savings, alerts)",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Confirm the reset")
	rootCmd.AddCommand(resetCmd)
}

func runReset(_ *cobra.Command, _ []string) error {
	if !flagResetYes {
		return errors.New("this erases all budget data; rerun with --yes to confirm")
	}
	return withSession(func(sess *session.Session) error {
		if _, err := sess.Apply(budget.ResetAll{Thresholds: appCfg.Thresholds()}); err != nil {
			return err
		}
		info("All budget data erased. The theme preference was kept.")
		return nil
	})
}

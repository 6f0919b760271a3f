package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/session"
)

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Show or update the savings goal",
	RunE:  runSavingsShow,
}

var savingsGoalCmd = &cobra.Command{
	Use:   "goal <amount>",
	Short: "Set the savings target; progress rescales proportionally",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavingsGoal,
}

var savingsAddCmd = &cobra.Command{
	Use:   "add <amount>",
	Short: "Add to savings progress (negative amounts withdraw)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavingsAdd,
}

func init() {
	savingsCmd.AddCommand(savingsGoalCmd, savingsAddCmd)
	rootCmd.AddCommand(savingsCmd)
}

func runSavingsShow(_ *cobra.Command, _ []string) error {
	return withSession(func(sess *session.Session) error {
		printSavings(sess)
		return nil
	})
}

func runSavingsGoal(_ *cobra.Command, args []string) error {
	target, err := session.ParseAmount(args[0])
	if err != nil {
		return err
	}
	return withSession(func(sess *session.Session) error {
		if _, err := sess.Apply(budget.SetSavingsGoal{Target: target}); err != nil {
			return err
		}
		printSavings(sess)
		return nil
	})
}

func runSavingsAdd(_ *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", budget.ErrInvalidAmount, args[0])
	}
	return withSession(func(sess *session.Session) error {
		if _, err := sess.Apply(budget.AddSavingsProgress{Amount: amount}); err != nil {
			return err
		}
		printSavings(sess)
		return nil
	})
}

func printSavings(sess *session.Session) {
	ov := sess.Overview()
	fmt.Println()
	fmt.Printf("  Goal:  %s\n", cli.FormatMoney(ov.SavingsTarget))
	fmt.Printf("  Saved: %s  %s\n", cli.FormatMoney(ov.SavingsSaved), cli.FormatRatio(ov.SavingsSaved, ov.SavingsTarget))
	for _, a := range budget.Visible(sess.State().Alerts) {
		if a.Category == "" {
			fmt.Println("  " + cli.RenderAlert(a))
		}
	}
}

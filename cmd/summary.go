package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/session"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Budget overview: income, spend, categories and alerts",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	return withSession(func(sess *session.Session) error {
		st := sess.State()
		if sess.Fresh() {
			fmt.Println("\n  No budget yet.")
			fmt.Println("  Run `cbudget setup` or `cbudget income set <amount>` to get started.")
			return nil
		}
		ov := sess.Overview()

		fmt.Println()
		fmt.Println(cli.RenderTitle("BUDGET  " + sess.Now().Format("January 2006")))
		fmt.Println()

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Income", cli.FormatMoney(ov.Income)},
				{"Spent", cli.FormatMoney(ov.TotalSpent)},
				{"Remaining", cli.FormatMoney(ov.Remaining)},
				{"Utilization", cli.FormatPercent(ov.UtilizationPct)},
				{"---"},
				{"Savings goal", cli.FormatMoney(ov.SavingsTarget)},
				{"Saved", fmt.Sprintf("%s (%d%%)", cli.FormatMoney(ov.SavingsSaved), ov.SavingsPct)},
				{"---"},
				{"Expenses", cli.FormatNumber(int64(ov.ExpenseCount))},
				{"Active alerts", strconv.Itoa(ov.AlertCount)},
			},
		}))

		fmt.Println()
		fmt.Print(categoryTable(st.Categories, st.Thresholds))

		if alerts := budget.Visible(st.Alerts); len(alerts) > 0 {
			fmt.Println()
			for _, a := range alerts {
				fmt.Println("  " + cli.RenderAlert(a))
			}
		}

		if !flagQuiet {
			tips := budget.Tips(ov.Income, ov.TotalSpent)
			fmt.Println()
			fmt.Println(cli.RenderMuted("  Tip: " + tips[0].Title + ": " + tips[0].Description))
		}
		return nil
	})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/session"
)

var (
	flagIncomeSource string
	flagIncomeDate   string
)

var incomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Set monthly income or show its history",
}

var incomeSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Replace the monthly income; category amounts rescale to match",
	Args:  cobra.ExactArgs(1),
	RunE:  runIncomeSet,
}

var incomeHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List income updates, newest first",
	RunE:  runIncomeHistory,
}

func init() {
	incomeSetCmd.Flags().StringVar(&flagIncomeSource, "source", "Salary", "Where the income comes from")
	incomeSetCmd.Flags().StringVar(&flagIncomeDate, "date", "", "Effective date, YYYY-MM-DD (default today)")
	incomeCmd.AddCommand(incomeSetCmd, incomeHistoryCmd)
	rootCmd.AddCommand(incomeCmd)
}

func runIncomeSet(_ *cobra.Command, args []string) error {
	amount, err := session.ParseAmount(args[0])
	if err != nil {
		return err
	}
	return withSession(func(sess *session.Session) error {
		prev := sess.State().Income
		if _, err := sess.Apply(budget.SetIncome{Amount: amount, Source: flagIncomeSource, Date: flagIncomeDate}); err != nil {
			return err
		}
		info("Income set to %s (%s)", cli.RenderMoney(cli.FormatMoney(amount)), cli.FormatDelta(amount, prev))
		return nil
	})
}

func runIncomeHistory(_ *cobra.Command, _ []string) error {
	return withSession(func(sess *session.Session) error {
		hist := sess.State().IncomeHistory
		if len(hist) == 0 {
			fmt.Println("\n  No income recorded yet.")
			return nil
		}
		rows := make([][]string, 0, len(hist))
		for _, e := range hist {
			rows = append(rows, []string{e.Date, cli.FormatMoney(e.Amount), e.Source})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Date", "Amount", "Source"}, Rows: rows}))
		return nil
	})
}

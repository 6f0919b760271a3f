package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
)

var (
	flagExpenseDate     string
	flagExpenseNotes    string
	flagExpenseLimit    int
	flagExpenseCategory string
)

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"expenses"},
	Short:   "Record and list expenses",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add <category> <amount>",
	Short: "Record an expense against a category",
	Args:  cobra.ExactArgs(2),
	RunE:  runExpenseAdd,
}

var expenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses, newest first",
	RunE:  runExpenseList,
}

func init() {
	expenseAddCmd.Flags().StringVar(&flagExpenseDate, "date", "", "Expense date, YYYY-MM-DD (default today)")
	expenseAddCmd.Flags().StringVar(&flagExpenseNotes, "notes", "", "Free-form notes")
	expenseListCmd.Flags().IntVarP(&flagExpenseLimit, "limit", "l", 20, "Max rows to show (0 for all)")
	expenseListCmd.Flags().StringVarP(&flagExpenseCategory, "category", "c", "", "Only this category")
	expenseCmd.AddCommand(expenseAddCmd, expenseListCmd)
	rootCmd.AddCommand(expenseCmd)
}

func runExpenseAdd(_ *cobra.Command, args []string) error {
	amount, err := session.ParseAmount(args[1])
	if err != nil {
		return err
	}
	return withSession(func(sess *session.Session) error {
		date := flagExpenseDate
		if date == "" {
			date = sess.Now().Format(model.DateLayout)
		}
		fx, err := sess.Apply(budget.AddExpense{Expense: model.Expense{
			Category: args[0],
			Amount:   amount,
			Date:     date,
			Notes:    strings.TrimSpace(flagExpenseNotes),
		}})
		if err != nil {
			return err
		}
		info("Added %s to %s", cli.FormatMoney(amount), args[0])
		for _, n := range fx.Notices {
			var mc *budget.MissingCategoryError
			if errors.As(n, &mc) {
				fmt.Println("  " + cli.RenderWarn(fmt.Sprintf("No budget category named %q; the expense counts toward totals only.", mc.Category)))
			}
		}
		for _, a := range budget.Visible(sess.State().Alerts) {
			if a.Category == args[0] {
				fmt.Println("  " + cli.RenderAlert(a))
			}
		}
		return nil
	})
}

func runExpenseList(_ *cobra.Command, _ []string) error {
	return withSession(func(sess *session.Session) error {
		var rows [][]string
		for _, e := range sess.State().Expenses {
			if flagExpenseCategory != "" && !strings.EqualFold(e.Category, flagExpenseCategory) {
				continue
			}
			rows = append(rows, []string{e.Date, e.Category, cli.FormatMoney(e.Amount), cli.Truncate(e.Notes, 40)})
			if flagExpenseLimit > 0 && len(rows) == flagExpenseLimit {
				break
			}
		}
		if len(rows) == 0 {
			fmt.Println("\n  No expenses found.")
			return nil
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Date", "Category", "Amount", "Notes"}, Rows: rows}))
		return nil
	})
}

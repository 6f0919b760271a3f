package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Show or change how income is split across categories",
	RunE:  runAllocateShow,
}

var allocateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current allocation",
	RunE:  runAllocateShow,
}

var allocateSetCmd = &cobra.Command{
	Use:     "set Name=pct...",
	Short:   "Replace the allocation; percentages must total 100",
	Example: "  cbudget allocate set Housing=35 Food=15 Transportation=10 Utilities=10 Savings=20 Entertainment=10",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAllocateSet,
}

var allocateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default allocation",
	RunE:  runAllocateReset,
}

func init() {
	allocateCmd.AddCommand(allocateShowCmd, allocateSetCmd, allocateResetCmd)
	rootCmd.AddCommand(allocateCmd)
}

func runAllocateShow(_ *cobra.Command, _ []string) error {
	return withSession(func(sess *session.Session) error {
		st := sess.State()
		fmt.Println()
		fmt.Print(categoryTable(st.Categories, st.Thresholds))
		return nil
	})
}

func runAllocateSet(_ *cobra.Command, args []string) error {
	cats, err := parseAllocation(args)
	if err != nil {
		return err
	}
	return withSession(func(sess *session.Session) error {
		if _, err := sess.Apply(budget.SaveAllocation{Categories: cats}); err != nil {
			var mismatch *budget.AllocationTotalMismatchError
			if errors.As(err, &mismatch) {
				return fmt.Errorf("%w (adjust the percentages so they add up to 100)", err)
			}
			return err
		}
		info("Allocation saved (%d categories)", len(cats))
		st := sess.State()
		fmt.Println()
		fmt.Print(categoryTable(st.Categories, st.Thresholds))
		return nil
	})
}

func runAllocateReset(_ *cobra.Command, _ []string) error {
	return withSession(func(sess *session.Session) error {
		if _, err := sess.Apply(budget.ResetAllocation{}); err != nil {
			return err
		}
		info("Allocation reset to defaults")
		return nil
	})
}

// parseAllocation parses Name=pct pairs, keeping argument order.
func parseAllocation(args []string) ([]model.BudgetCategory, error) {
	cats := make([]model.BudgetCategory, 0, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected Name=percent, got %q", arg)
		}
		pct, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
		if err != nil {
			return nil, fmt.Errorf("%s: percentage must be a whole number, got %q", name, raw)
		}
		cats = append(cats, model.BudgetCategory{Name: name, Percentage: pct})
	}
	return cats, nil
}

// categoryTable renders the allocation with spend and a usage bar per row.
func categoryTable(cats []model.BudgetCategory, th model.AlertThresholds) string {
	rows := make([][]string, 0, len(cats)+2)
	allocated, spent := decimal.Zero, decimal.Zero
	for _, c := range cats {
		usage := "-"
		if c.Allocated.IsPositive() {
			usage = cli.RenderUsageBar(int(budget.PercentUsed(c).Round(0).IntPart()), th, 10)
		}
		rows = append(rows, []string{
			c.Name,
			cli.FormatPercent(c.Percentage),
			cli.FormatMoney(c.Allocated),
			cli.FormatMoney(c.Spent),
			cli.FormatMoney(c.Remaining()),
			usage,
		})
		allocated = allocated.Add(c.Allocated)
		spent = spent.Add(c.Spent)
	}
	_, total := budget.ValidateTotal(cats)
	rows = append(rows, []string{"---"}, []string{
		"Total", cli.FormatPercent(total), cli.FormatMoney(allocated), cli.FormatMoney(spent), cli.FormatMoney(allocated.Sub(spent)), "",
	})
	return cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Share", "Allocated", "Spent", "Remaining", "Usage"},
		Rows:    rows,
	})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/report"
	"github.com/theirongolddev/cbudget/internal/session"
)

var (
	flagReportMonths    int
	flagReportTimeframe string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Spending breakdown by category and month, with a month-end forecast",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVarP(&flagReportMonths, "months", "m", 0, "Months in the trend (default from config)")
	reportCmd.Flags().StringVarP(&flagReportTimeframe, "timeframe", "t", "monthly", "Category breakdown period: monthly, quarterly, yearly")
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	tf, err := report.ParseTimeframe(flagReportTimeframe)
	if err != nil {
		return err
	}
	months := flagReportMonths
	if months <= 0 {
		months = appCfg.General.ReportMonths
	}

	return withSession(func(sess *session.Session) error {
		st := sess.State()
		now := sess.Now()
		r := report.Build(st, tf, now)

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("%s REPORT  %s to %s", tf.Title(), r.From, r.To)))
		fmt.Println()

		if len(r.Categories) == 0 {
			fmt.Println("  No expenses in this period.")
		} else {
			rows := make([][]string, 0, len(r.Categories)+2)
			for _, c := range r.Categories {
				rows = append(rows, []string{c.Category, cli.FormatNumber(int64(c.Count)), cli.FormatMoney(c.Amount), fmt.Sprintf("%.1f%%", c.Share)})
			}
			rows = append(rows, []string{"---"}, []string{"Total", cli.FormatNumber(int64(len(r.Expenses))), cli.FormatMoney(r.TotalExpenses), ""})
			fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Category", "Count", "Spent", "Share"}, Rows: rows}))
		}

		trend := report.ByMonth(st.Expenses, now, months)
		vals := make([]float64, len(trend))
		top := 0.0
		for i, m := range trend {
			vals[i] = m.Amount.InexactFloat64()
			top = max(top, vals[i])
		}
		fmt.Println()
		fmt.Printf("  Last %d months  %s\n\n", len(trend), cli.RenderSparkline(vals))
		for i, m := range trend {
			fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%s %12s", m.Month, cli.FormatMoney(m.Amount)), vals[i], top, 30))
		}

		f := report.ForecastMonth(st.Expenses, now)
		fmt.Println()
		line := fmt.Sprintf("  Projected spend for %s: %s (%s/day, %s)", f.Month, cli.FormatMoney(f.Projected), cli.FormatMoney(f.DailyRate), f.Method)
		if f.OverBudget(st.Income) {
			fmt.Println(cli.RenderWarn(line + "  over income"))
		} else {
			fmt.Println(line)
		}
		return nil
	})
}

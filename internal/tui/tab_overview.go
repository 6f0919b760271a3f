package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/report"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	ov := a.overview
	var b strings.Builder

	// Row 1: Metric cards
	remainingColor := t.GreenBright
	if ov.Remaining.IsNegative() {
		remainingColor = t.Red
	}
	savingsDelta := "no goal set"
	if ov.SavingsTarget.IsPositive() {
		savingsDelta = fmt.Sprintf("%d%% of %s", ov.SavingsPct, cli.FormatMoneyShort(ov.SavingsTarget))
	}
	cards := []components.Metric{
		{Label: "Income", Value: cli.FormatMoneyShort(ov.Income), Delta: fmt.Sprintf("%d income updates", len(a.state.IncomeHistory))},
		{Label: "Spent", Value: cli.FormatMoneyShort(ov.TotalSpent), Delta: fmt.Sprintf("%d%% of income, %d expenses", ov.UtilizationPct, ov.ExpenseCount)},
		{Label: "Remaining", Value: cli.FormatMoneyShort(ov.Remaining), Color: remainingColor},
		{Label: "Savings", Value: cli.FormatMoneyShort(ov.SavingsSaved), Delta: savingsDelta},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: Category usage
	innerW := components.CardInnerWidth(cw)
	labelW := 14
	barW := max(innerW-labelW-32, 10)
	var usage strings.Builder
	if len(a.state.Categories) == 0 {
		usage.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No categories yet."))
	}
	for i, c := range a.state.Categories {
		pct := int(budget.PercentUsed(c).Round(0).IntPart())
		detail := fmt.Sprintf("%s / %s", cli.FormatMoneyShort(c.Spent), cli.FormatMoneyShort(c.Allocated))
		usage.WriteString(components.UsageBar(c.Name, pct, a.state.Thresholds, detail, labelW, barW))
		if i < len(a.state.Categories)-1 {
			usage.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard("Category Usage", usage.String(), cw))
	b.WriteString("\n")

	// Row 3: Monthly spend chart + forecast/tips
	now := a.sess.Now()
	months := report.ByMonth(a.state.Expenses, now, max(a.cfg.General.ReportMonths, 1))
	vals := make([]float64, len(months))
	labels := make([]string, len(months))
	for i, m := range months {
		vals[i] = m.Amount.InexactFloat64()
		labels[i] = m.Month[5:]
	}
	limit := a.state.Income.InexactFloat64()

	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}

	halves := components.LayoutRow(cw, 2)
	chartW := cw
	if !a.isCompactLayout() {
		chartW = halves[0]
	}
	chartCard := components.ContentCard(
		fmt.Sprintf("Monthly Spend (%dm)", len(months)),
		components.BarChart(vals, labels, t.Blue, limit, components.CardInnerWidth(chartW), chartH),
		chartW,
	)

	infoW := cw
	if !a.isCompactLayout() {
		infoW = halves[1]
	}
	infoCard := components.ContentCard("Forecast & Tips", a.renderForecast(infoW), infoW)

	if a.isCompactLayout() {
		b.WriteString(chartCard)
		b.WriteString("\n")
		b.WriteString(infoCard)
	} else {
		b.WriteString(components.CardRow([]string{chartCard, infoCard}))
	}
	return b.String()
}

func (a App) renderForecast(outerW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	tipTitle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	tipText := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	f := report.ForecastMonth(a.state.Expenses, a.sess.Now())
	innerW := components.CardInnerWidth(outerW)

	var b strings.Builder
	b.WriteString(labelStyle.Render("Month-end projection: "))
	if f.OverBudget(a.state.Income) {
		b.WriteString(warnStyle.Render(cli.FormatMoney(f.Projected) + " (over income)"))
	} else {
		b.WriteString(valueStyle.Render(cli.FormatMoney(f.Projected)))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Daily rate %s, %d/%d days (%s)",
		cli.FormatMoney(f.DailyRate), f.DaysElapsed, f.DaysInMonth, f.Method)))
	b.WriteString("\n")

	tips := budget.Tips(a.overview.Income, a.overview.TotalSpent)
	for _, tip := range tips[:min(len(tips), 3)] {
		b.WriteString("\n")
		b.WriteString(tipTitle.Render(tip.Title))
		b.WriteString("\n")
		b.WriteString(tipText.Render(cli.Truncate(tip.Description, innerW)))
	}
	return b.String()
}

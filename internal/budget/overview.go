package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/model"
)

// Overview holds the headline figures shown on the dashboard.
type Overview struct {
	Income         decimal.Decimal `json:"income" yaml:"income"`
	TotalSpent     decimal.Decimal `json:"total_spent" yaml:"total_spent"`
	Remaining      decimal.Decimal `json:"remaining" yaml:"remaining"`
	SavingsTarget  decimal.Decimal `json:"savings_target" yaml:"savings_target"`
	SavingsSaved   decimal.Decimal `json:"savings_progress" yaml:"savings_progress"`
	SavingsPct     int             `json:"savings_pct" yaml:"savings_pct"`         // capped at 100
	UtilizationPct int             `json:"utilization_pct" yaml:"utilization_pct"` // spent / income
	ExpenseCount   int             `json:"expense_count" yaml:"expense_count"`
	AlertCount     int             `json:"alert_count" yaml:"alert_count"` // visible only
}

// ComputeOverview derives the headline figures from s.
func ComputeOverview(s model.State) Overview {
	spent := TotalSpent(s.Expenses)
	o := Overview{
		Income:        s.Income,
		TotalSpent:    spent,
		Remaining:     RemainingBudget(s.Income, spent),
		SavingsTarget: s.Savings.Target,
		SavingsSaved:  s.Savings.Progress,
		ExpenseCount:  len(s.Expenses),
		AlertCount:    len(Visible(s.Alerts)),
	}
	if s.Savings.Target.IsPositive() {
		o.SavingsPct = min(int(s.Savings.PercentComplete().Round(0).IntPart()), 100)
	}
	if s.Income.IsPositive() {
		o.UtilizationPct = int(spent.Mul(hundred).Div(s.Income).Round(0).IntPart())
	}
	return o
}

// Tip is a short piece of budgeting advice.
type Tip struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

var generalTips = []Tip{
	{"50/30/20 Rule", "Consider allocating 50% of income to needs, 30% to wants, and 20% to savings for financial stability."},
	{"Emergency Fund", "Aim to save 3-6 months of expenses in an emergency fund for unexpected financial challenges."},
	{"Expense Tracking", "Track all expenses for a month to identify spending patterns and potential areas to cut back."},
}

// Tips returns personalized tips first, then the general ones.
func Tips(income, totalSpent decimal.Decimal) []Tip {
	var tips []Tip
	if income.IsPositive() {
		pct := totalSpent.Mul(hundred).Div(income)
		if totalSpent.GreaterThan(income.Mul(decimal.RequireFromString("0.9"))) {
			tips = append(tips, Tip{
				Title:       "Spending Alert",
				Description: fmt.Sprintf("You're currently spending %s%% of your income. Consider reviewing non-essential expenses to increase savings.", pct.StringFixed(0)),
			})
		}
		if totalSpent.LessThan(income.Mul(decimal.RequireFromString("0.8"))) {
			tips = append(tips, Tip{
				Title:       "Great Saving Habits",
				Description: fmt.Sprintf("You're saving %s%% of your income. Consider investing some of your savings for long-term growth.", hundred.Sub(pct).StringFixed(0)),
			})
		}
		if income.LessThan(decimal.NewFromInt(1000)) {
			tips = append(tips, Tip{
				Title:       "Income Growth",
				Description: "Consider exploring additional income sources or skills development to increase your earning potential.",
			})
		}
	}
	return append(tips, generalTips...)
}

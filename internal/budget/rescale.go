package budget

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/model"
)

// RescaleOnIncomeChange scales each allocated amount by newIncome/oldIncome.
// An old income of zero counts as one for the ratio.
func RescaleOnIncomeChange(oldIncome, newIncome decimal.Decimal, categories []model.BudgetCategory) []model.BudgetCategory {
	base := oldIncome
	if base.LessThan(decimal.NewFromInt(1)) {
		base = decimal.NewFromInt(1)
	}
	out := make([]model.BudgetCategory, len(categories))
	for i, c := range categories {
		c.Allocated = newIncome.Mul(c.Allocated).Div(base).Round(0)
		out[i] = c
	}
	return out
}

// RescaleSavingsGoal keeps progress proportional when the goal moves.
func RescaleSavingsGoal(oldGoal, oldProgress, newGoal decimal.Decimal) decimal.Decimal {
	if !oldGoal.IsPositive() {
		return decimal.Zero
	}
	return oldProgress.Div(oldGoal).Mul(newGoal).Round(0)
}

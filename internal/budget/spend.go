package budget

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/model"
)

// ValidateExpense checks the fields the engine relies on.
func ValidateExpense(e model.Expense) error {
	if !e.Amount.IsPositive() {
		return &InvalidExpenseError{Field: "amount", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(e.Category) == "" {
		return &InvalidExpenseError{Field: "category", Reason: "is required"}
	}
	if strings.TrimSpace(e.Date) == "" {
		return &InvalidExpenseError{Field: "date", Reason: "is required"}
	}
	if _, err := time.Parse(model.DateLayout, e.Date); err != nil {
		return &InvalidExpenseError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return nil
}

// RecordExpense validates e, assigns an id when missing and prepends it.
func RecordExpense(expenses []model.Expense, e model.Expense) ([]model.Expense, error) {
	if err := ValidateExpense(e); err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	out := make([]model.Expense, 0, len(expenses)+1)
	out = append(out, e)
	out = append(out, expenses...)
	return out, nil
}

// TotalSpent sums every recorded amount.
func TotalSpent(expenses []model.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// SpentByCategory aggregates amounts per category name. Categories without
// expenses are absent.
func SpentByCategory(expenses []model.Expense) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		m[e.Category] = m[e.Category].Add(e.Amount)
	}
	return m
}

// ApplyExpenseToCategory adds e.Amount to the category with exactly the same
// name. When none matches, the categories come back unchanged and ok is false.
func ApplyExpenseToCategory(categories []model.BudgetCategory, e model.Expense) ([]model.BudgetCategory, bool) {
	out := append([]model.BudgetCategory(nil), categories...)
	for i := range out {
		if out[i].Name == e.Category {
			out[i].Spent = out[i].Spent.Add(e.Amount)
			return out, true
		}
	}
	return out, false
}

// RemainingBudget is income minus spend. Negative means overspent.
func RemainingBudget(income, totalSpent decimal.Decimal) decimal.Decimal {
	return income.Sub(totalSpent)
}

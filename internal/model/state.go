package model

import (
	"slices"

	"github.com/shopspring/decimal"
)

// State is the complete budget session. Engine operations take a State and
// return a new one; nothing mutates a State in place.
type State struct {
	Income        decimal.Decimal
	IncomeHistory []IncomeEntry
	Expenses      []Expense // newest first
	Categories    []BudgetCategory
	Savings       SavingsGoal
	Thresholds    AlertThresholds
	Alerts        []Alert
	Theme         ThemeMode
}

// Clone returns a deep copy of s so callers can modify slices freely.
func (s State) Clone() State {
	out := s
	out.IncomeHistory = slices.Clone(s.IncomeHistory)
	out.Expenses = slices.Clone(s.Expenses)
	out.Categories = slices.Clone(s.Categories)
	out.Alerts = slices.Clone(s.Alerts)
	return out
}

// CategoryByName returns the index of the category with exactly the given
// name, or -1.
func (s State) CategoryByName(name string) int {
	for i, c := range s.Categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}

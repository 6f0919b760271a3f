// Package budget implements the allocation, spend tracking, alert and
// rescaling rules. Every function is pure: inputs are never modified and a
// fresh slice is returned.
package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/model"
)

var hundred = decimal.NewFromInt(100)

// SavingsCategory is the category whose percentage drives the savings goal.
const SavingsCategory = "Savings"

// DefaultCategories returns the canonical default split. It sums to 100.
func DefaultCategories() []model.BudgetCategory {
	return []model.BudgetCategory{
		{Name: "Housing", Percentage: 30},
		{Name: "Transportation", Percentage: 15},
		{Name: "Food", Percentage: 15},
		{Name: "Utilities", Percentage: 10},
		{Name: SavingsCategory, Percentage: 20},
		{Name: "Entertainment", Percentage: 10},
	}
}

// AllocatedFor returns round(income * pct / 100) in whole currency units.
// Negative income counts as zero.
func AllocatedFor(income decimal.Decimal, pct int) decimal.Decimal {
	if income.IsNegative() {
		income = decimal.Zero
	}
	return income.Mul(decimal.NewFromInt(int64(pct))).Div(hundred).Round(0)
}

// ComputeAmounts derives each category's allocated amount from its
// percentage and the given income.
func ComputeAmounts(categories []model.BudgetCategory, income decimal.Decimal) []model.BudgetCategory {
	out := make([]model.BudgetCategory, len(categories))
	for i, c := range categories {
		c.Allocated = AllocatedFor(income, c.Percentage)
		out[i] = c
	}
	return out
}

// ValidateTotal reports whether the percentages sum to exactly 100.
// An empty set is never valid.
func ValidateTotal(categories []model.BudgetCategory) (bool, int) {
	total := 0
	for _, c := range categories {
		total += c.Percentage
	}
	return len(categories) > 0 && total == 100, total
}

// validateShape rejects blank or duplicate names and percentages outside 0..100.
func validateShape(categories []model.BudgetCategory) error {
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("%w: blank category name", ErrInvalidAllocation)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidAllocation, c.Name)
		}
		seen[key] = true
		if c.Percentage < 0 || c.Percentage > 100 {
			return fmt.Errorf("%w: %s percentage %d out of range", ErrInvalidAllocation, c.Name, c.Percentage)
		}
	}
	return nil
}

// ApplyAllocation validates the set and returns it with derived amounts.
// A set that does not total 100 yields *AllocationTotalMismatchError.
func ApplyAllocation(categories []model.BudgetCategory, income decimal.Decimal) ([]model.BudgetCategory, error) {
	if err := validateShape(categories); err != nil {
		return nil, err
	}
	if ok, total := ValidateTotal(categories); !ok {
		return nil, &AllocationTotalMismatchError{Total: total}
	}
	return ComputeAmounts(categories, income), nil
}

// CarrySpent copies spent amounts from prev onto next, matching names
// case-insensitively. Categories new to the plan start at zero.
func CarrySpent(prev, next []model.BudgetCategory) []model.BudgetCategory {
	spent := make(map[string]decimal.Decimal, len(prev))
	for _, c := range prev {
		spent[strings.ToLower(c.Name)] = c.Spent
	}
	out := make([]model.BudgetCategory, len(next))
	for i, c := range next {
		c.Spent = spent[strings.ToLower(c.Name)]
		out[i] = c
	}
	return out
}

// SavingsPercentage returns the percentage assigned to the Savings category
// and whether one exists.
func SavingsPercentage(categories []model.BudgetCategory) (int, bool) {
	for _, c := range categories {
		if strings.EqualFold(c.Name, SavingsCategory) {
			return c.Percentage, true
		}
	}
	return 0, false
}

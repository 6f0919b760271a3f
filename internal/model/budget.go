// Package model defines the budget domain types shared across packages.
package model

import "github.com/shopspring/decimal"

// Money is encoded as bare JSON numbers wherever these types are marshaled:
// in stored keys, exports and daemon payloads alike.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the ISO calendar date format used for expense and income dates.
const DateLayout = "2006-01-02"

// BudgetCategory holds one line of the allocation plan.
type BudgetCategory struct {
	Name       string          `json:"name"`
	Percentage int             `json:"percentage"`
	Allocated  decimal.Decimal `json:"allocated"`
	Spent      decimal.Decimal `json:"spent"`
}

// Remaining returns allocated minus spent. Negative means the category is overspent.
func (c BudgetCategory) Remaining() decimal.Decimal {
	return c.Allocated.Sub(c.Spent)
}

// Expense is a single immutable spend record.
type Expense struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Notes    string          `json:"notes,omitempty"`
}

// IncomeEntry records one income update. The newest entry is authoritative.
type IncomeEntry struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Source string          `json:"source"`
	Date   string          `json:"date"`
}

// SavingsGoal tracks a target amount and progress toward it.
// Progress may exceed Target.
type SavingsGoal struct {
	Target   decimal.Decimal `json:"target"`
	Progress decimal.Decimal `json:"progress"`
}

// PercentComplete returns progress as a percentage of target, or zero when
// no target is set.
func (g SavingsGoal) PercentComplete() decimal.Decimal {
	if !g.Target.IsPositive() {
		return decimal.Zero
	}
	return g.Progress.Div(g.Target).Mul(decimal.NewFromInt(100))
}

// AlertThresholds configures when alerts fire. Warning and Danger are
// percentages of a category's allocation.
type AlertThresholds struct {
	Warning              int  `json:"warning"`
	Danger               int  `json:"danger"`
	SavingsGoalEnabled   bool `json:"savingsGoalEnabled"`
	SavingsNotifications bool `json:"savingsNotifications"`
}

// DefaultThresholds returns the out-of-the-box alert configuration.
func DefaultThresholds() AlertThresholds {
	return AlertThresholds{
		Warning:              85,
		Danger:               100,
		SavingsGoalEnabled:   true,
		SavingsNotifications: true,
	}
}

// AlertKind is the severity of an alert.
type AlertKind string

// Alert kinds.
const (
	AlertWarning AlertKind = "warning"
	AlertDanger  AlertKind = "danger"
	AlertInfo    AlertKind = "info"
	AlertSuccess AlertKind = "success"
)

// Valid reports whether k is one of the known kinds.
func (k AlertKind) Valid() bool {
	switch k {
	case AlertWarning, AlertDanger, AlertInfo, AlertSuccess:
		return true
	}
	return false
}

// Alert is a generated notice about spending or savings.
// ID is stable across evaluations: "<kind>:<subject>".
type Alert struct {
	ID          string    `json:"id"`
	Kind        AlertKind `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Category    string    `json:"category,omitempty"`
	Dismissed   bool      `json:"dismissed,omitempty"`
}

// ThemeMode is the persisted light/dark preference.
type ThemeMode string

// Theme modes.
const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// Valid reports whether m is light or dark.
func (m ThemeMode) Valid() bool {
	return m == ThemeLight || m == ThemeDark
}

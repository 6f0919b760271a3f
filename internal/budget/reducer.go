package budget

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/model"
)

// Field identifies a persisted part of the state.
type Field uint16

// Persisted fields. Each maps to one key in the store.
const (
	FieldIncome Field = 1 << iota
	FieldIncomeHistory
	FieldExpenses
	FieldCategories
	FieldSavingsGoal
	FieldSavingsProgress
	FieldThresholds
	FieldAlerts
	FieldTheme
)

// AllFields covers every persisted field.
const AllFields = FieldIncome | FieldIncomeHistory | FieldExpenses | FieldCategories |
	FieldSavingsGoal | FieldSavingsProgress | FieldThresholds | FieldAlerts | FieldTheme

// Has reports whether every bit of g is set in f.
func (f Field) Has(g Field) bool { return f&g == g }

// Effects describes what an applied event changed.
type Effects struct {
	Fields  Field
	Notices []error // non-fatal, e.g. *MissingCategoryError
	Reset   bool    // every key except the theme should be cleared
}

// Event is a state transition request. Implementations are plain values.
type Event interface {
	apply(s *model.State, fx *Effects, now time.Time) error
}

// SetIncome replaces the monthly income.
type SetIncome struct {
	Amount decimal.Decimal
	Source string
	Date   string // defaults to today
}

// AddExpense records one expense.
type AddExpense struct {
	Expense model.Expense
}

// SaveAllocation commits a new percentage plan. Order is preserved.
type SaveAllocation struct {
	Categories []model.BudgetCategory // Name and Percentage are read
}

// ResetAllocation restores the default split.
type ResetAllocation struct{}

// UpdateThresholds replaces the alert thresholds.
type UpdateThresholds struct {
	Thresholds model.AlertThresholds
}

// DismissAlertEvent hides an alert by id.
type DismissAlertEvent struct {
	ID string
}

// SetSavingsGoal sets a new target and rescales progress to keep the ratio.
// Progress saved before any target existed is kept as is.
type SetSavingsGoal struct {
	Target decimal.Decimal
}

// AddSavingsProgress adds (or with a negative amount, withdraws) progress.
type AddSavingsProgress struct {
	Amount decimal.Decimal
}

// SetTheme stores the light/dark preference.
type SetTheme struct {
	Mode model.ThemeMode
}

// ResetAll clears everything except the theme. Thresholds fall back to
// DefaultThresholds when zero.
type ResetAll struct {
	Thresholds model.AlertThresholds
}

// NewState returns the state of a fresh store.
func NewState(th model.AlertThresholds) model.State {
	return model.State{
		Income:     decimal.Zero,
		Categories: ComputeAmounts(DefaultCategories(), decimal.Zero),
		Thresholds: th,
		Theme:      model.ThemeDark,
	}
}

// Apply runs ev against s and returns the next state. s is never modified.
// On error the returned state is s unchanged and no fields are reported.
// Alerts are re-evaluated after every successful event.
func Apply(s model.State, ev Event, now time.Time) (model.State, Effects, error) {
	next := s.Clone()
	var fx Effects
	if err := ev.apply(&next, &fx, now); err != nil {
		return s, Effects{}, err
	}
	alerts := Reconcile(next.Alerts, Evaluate(next), now.Format(model.DateLayout))
	if !alertsEqual(alerts, s.Alerts) {
		fx.Fields |= FieldAlerts
	}
	next.Alerts = alerts
	return next, fx, nil
}

func (e SetIncome) apply(s *model.State, fx *Effects, now time.Time) error {
	if e.Amount.IsNegative() {
		return fmt.Errorf("%w: income must not be negative", ErrInvalidAmount)
	}
	date := e.Date
	if date == "" {
		date = now.Format(model.DateLayout)
	} else if _, err := time.Parse(model.DateLayout, date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidAmount)
	}
	if s.Income.IsPositive() {
		s.Categories = RescaleOnIncomeChange(s.Income, e.Amount, s.Categories)
	} else {
		s.Categories = ComputeAmounts(s.Categories, e.Amount)
	}
	s.Income = e.Amount
	entry := model.IncomeEntry{ID: uuid.NewString(), Amount: e.Amount, Source: e.Source, Date: date}
	s.IncomeHistory = append([]model.IncomeEntry{entry}, s.IncomeHistory...)
	fx.Fields |= FieldIncome | FieldIncomeHistory | FieldCategories
	return nil
}

func (e AddExpense) apply(s *model.State, fx *Effects, _ time.Time) error {
	expenses, err := RecordExpense(s.Expenses, e.Expense)
	if err != nil {
		return err
	}
	s.Expenses = expenses
	fx.Fields |= FieldExpenses
	cats, ok := ApplyExpenseToCategory(s.Categories, expenses[0])
	if !ok {
		fx.Notices = append(fx.Notices, &MissingCategoryError{Category: e.Expense.Category})
		return nil
	}
	s.Categories = cats
	fx.Fields |= FieldCategories
	return nil
}

func (e SaveAllocation) apply(s *model.State, fx *Effects, _ time.Time) error {
	cats, err := ApplyAllocation(e.Categories, s.Income)
	if err != nil {
		return err
	}
	commitAllocation(s, fx, cats)
	return nil
}

func (ResetAllocation) apply(s *model.State, fx *Effects, _ time.Time) error {
	cats, err := ApplyAllocation(DefaultCategories(), s.Income)
	if err != nil {
		return err
	}
	commitAllocation(s, fx, cats)
	return nil
}

// commitAllocation stores cats, keeping spend, and moves the savings goal to
// the Savings category's share of income.
func commitAllocation(s *model.State, fx *Effects, cats []model.BudgetCategory) {
	s.Categories = CarrySpent(s.Categories, cats)
	fx.Fields |= FieldCategories
	pct, ok := SavingsPercentage(cats)
	if !ok || !s.Income.IsPositive() {
		return
	}
	goal := AllocatedFor(s.Income, pct)
	s.Savings = model.SavingsGoal{
		Target:   goal,
		Progress: RescaleSavingsGoal(s.Savings.Target, s.Savings.Progress, goal),
	}
	fx.Fields |= FieldSavingsGoal | FieldSavingsProgress
}

// ValidateThresholds enforces 0 < warning < danger.
func ValidateThresholds(th model.AlertThresholds) error {
	if th.Warning <= 0 {
		return fmt.Errorf("%w: warning must be positive, got %d", ErrInvalidThresholds, th.Warning)
	}
	if th.Warning >= th.Danger {
		return fmt.Errorf("%w: warning %d must be below danger %d", ErrInvalidThresholds, th.Warning, th.Danger)
	}
	return nil
}

func (e UpdateThresholds) apply(s *model.State, fx *Effects, _ time.Time) error {
	if err := ValidateThresholds(e.Thresholds); err != nil {
		return err
	}
	s.Thresholds = e.Thresholds
	fx.Fields |= FieldThresholds
	return nil
}

func (e DismissAlertEvent) apply(s *model.State, fx *Effects, _ time.Time) error {
	alerts, err := DismissAlert(s.Alerts, e.ID)
	if err != nil {
		return err
	}
	s.Alerts = alerts
	fx.Fields |= FieldAlerts
	return nil
}

func (e SetSavingsGoal) apply(s *model.State, fx *Effects, _ time.Time) error {
	if e.Target.IsNegative() {
		return fmt.Errorf("%w: savings goal must not be negative", ErrInvalidAmount)
	}
	progress := s.Savings.Progress
	if s.Savings.Target.IsPositive() {
		progress = RescaleSavingsGoal(s.Savings.Target, s.Savings.Progress, e.Target)
	}
	s.Savings = model.SavingsGoal{Target: e.Target, Progress: progress}
	fx.Fields |= FieldSavingsGoal | FieldSavingsProgress
	return nil
}

func (e AddSavingsProgress) apply(s *model.State, fx *Effects, _ time.Time) error {
	if e.Amount.IsZero() {
		return fmt.Errorf("%w: amount must not be zero", ErrInvalidAmount)
	}
	progress := s.Savings.Progress.Add(e.Amount)
	if progress.IsNegative() {
		return fmt.Errorf("%w: withdrawal exceeds saved progress %s", ErrInvalidAmount, s.Savings.Progress.StringFixed(2))
	}
	s.Savings.Progress = progress
	fx.Fields |= FieldSavingsProgress
	return nil
}

func (e SetTheme) apply(s *model.State, fx *Effects, _ time.Time) error {
	if !e.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, e.Mode)
	}
	s.Theme = e.Mode
	fx.Fields |= FieldTheme
	return nil
}

func (e ResetAll) apply(s *model.State, fx *Effects, _ time.Time) error {
	th := e.Thresholds
	if th == (model.AlertThresholds{}) {
		th = model.DefaultThresholds()
	}
	theme := s.Theme
	*s = NewState(th)
	s.Theme = theme
	fx.Reset = true
	fx.Fields |= AllFields &^ FieldTheme
	return nil
}

func alertsEqual(a, b []model.Alert) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

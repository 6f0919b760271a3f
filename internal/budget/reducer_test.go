package budget

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/model"
)

var day = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func mustApply(t *testing.T, s model.State, ev Event) (model.State, Effects) {
	t.Helper()
	next, fx, err := Apply(s, ev, day)
	require.NoError(t, err)
	return next, fx
}

func funded(t *testing.T) model.State {
	t.Helper()
	s, _ := mustApply(t, NewState(model.DefaultThresholds()), SetIncome{Amount: d("5000"), Source: "Salary"})
	return s
}

func TestApply_SetIncomeFromZeroUsesPercentages(t *testing.T) {
	s, fx := mustApply(t, NewState(model.DefaultThresholds()), SetIncome{Amount: d("5000")})
	assert.Equal(t, "5000", s.Income.String())
	assert.Equal(t, "1500", s.Categories[0].Allocated.String())
	assert.True(t, fx.Fields.Has(FieldIncome|FieldCategories|FieldIncomeHistory))
	require.Len(t, s.IncomeHistory, 1)
	assert.Equal(t, "2025-03-14", s.IncomeHistory[0].Date)
}

func TestApply_SetIncomeReplacesAndRescales(t *testing.T) {
	s, _ := mustApply(t, funded(t), SetIncome{Amount: d("6000"), Source: "Raise"})
	assert.Equal(t, "6000", s.Income.String())
	assert.Equal(t, "1800", s.Categories[0].Allocated.String())
	require.Len(t, s.IncomeHistory, 2)
	assert.Equal(t, "Raise", s.IncomeHistory[0].Source)
}

func TestApply_RejectsNegativeIncome(t *testing.T) {
	s := funded(t)
	next, fx, err := Apply(s, SetIncome{Amount: d("-1")}, day)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, s, next)
	assert.Zero(t, fx.Fields)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s := funded(t)
	before := s.Clone()
	_, _ = mustApply(t, s, AddExpense{Expense: model.Expense{Category: "Food", Amount: d("20"), Date: "2025-03-01"}})
	assert.Equal(t, before, s)
}

func TestApply_AllocationMismatchLeavesStateAlone(t *testing.T) {
	s := funded(t)
	next, fx, err := Apply(s, SaveAllocation{Categories: withPcts(30, 15, 15, 10, 20, 5)}, day)
	require.ErrorIs(t, err, ErrAllocationTotalMismatch)
	assert.Equal(t, s, next)
	assert.Zero(t, fx.Fields)
}

func TestApply_SaveAllocationMovesSavingsGoal(t *testing.T) {
	s := funded(t)
	s, _ = mustApply(t, s, SetSavingsGoal{Target: d("1000")})
	s, _ = mustApply(t, s, AddSavingsProgress{Amount: d("750")})
	s, _ = mustApply(t, s, AddExpense{Expense: model.Expense{Category: "Food", Amount: d("40"), Date: "2025-03-02"}})

	next, fx := mustApply(t, s, SaveAllocation{Categories: []model.BudgetCategory{
		{Name: "food", Percentage: 40},
		{Name: "Savings", Percentage: 40},
		{Name: "Rent", Percentage: 20},
	}})
	assert.True(t, fx.Fields.Has(FieldCategories|FieldSavingsGoal|FieldSavingsProgress))
	assert.Equal(t, "2000", next.Savings.Target.String())
	assert.Equal(t, "1500", next.Savings.Progress.String())
	assert.Equal(t, "40", next.Categories[0].Spent.String())
	assert.Equal(t, "2000", next.Categories[0].Allocated.String())
}

func TestApply_ResetAllocation(t *testing.T) {
	s := funded(t)
	s, _ = mustApply(t, s, SaveAllocation{Categories: []model.BudgetCategory{{Name: "Food", Percentage: 100}}})
	require.Len(t, s.Categories, 1)

	s, _ = mustApply(t, s, ResetAllocation{})
	assert.Len(t, s.Categories, 6)
	assert.Equal(t, "1000", s.Savings.Target.String())
}

func TestApply_AddExpenseUnknownCategory(t *testing.T) {
	s := funded(t)
	next, fx := mustApply(t, s, AddExpense{Expense: model.Expense{Category: "Pets", Amount: d("30"), Date: "2025-03-03"}})
	require.Len(t, next.Expenses, 1)
	assert.Equal(t, s.Categories, next.Categories)
	assert.False(t, fx.Fields.Has(FieldCategories))
	require.Len(t, fx.Notices, 1)
	assert.ErrorIs(t, fx.Notices[0], ErrMissingCategory)
}

func TestApply_InvalidExpense(t *testing.T) {
	s := funded(t)
	next, _, err := Apply(s, AddExpense{Expense: model.Expense{Category: "Food", Amount: decimal.Zero, Date: "2025-03-03"}}, day)
	assert.ErrorIs(t, err, ErrInvalidExpense)
	assert.Empty(t, next.Expenses)
}

func TestApply_DismissalSurvivesReevaluation(t *testing.T) {
	s := funded(t) // Food allocated 750
	s, fx := mustApply(t, s, AddExpense{Expense: model.Expense{Category: "Food", Amount: d("640"), Date: "2025-03-04"}})
	assert.True(t, fx.Fields.Has(FieldAlerts))
	require.Len(t, s.Alerts, 1)
	assert.Equal(t, "warning:Food", s.Alerts[0].ID)

	s, _ = mustApply(t, s, DismissAlertEvent{ID: "warning:Food"})
	assert.Empty(t, Visible(s.Alerts))

	s, _ = mustApply(t, s, AddExpense{Expense: model.Expense{Category: "Food", Amount: d("10"), Date: "2025-03-05"}})
	require.Len(t, s.Alerts, 1)
	assert.True(t, s.Alerts[0].Dismissed)

	s, _ = mustApply(t, s, AddExpense{Expense: model.Expense{Category: "Food", Amount: d("200"), Date: "2025-03-06"}})
	require.Len(t, s.Alerts, 1)
	assert.Equal(t, "danger:Food", s.Alerts[0].ID)
	assert.False(t, s.Alerts[0].Dismissed)
}

func TestApply_DismissUnknownAlert(t *testing.T) {
	_, _, err := Apply(funded(t), DismissAlertEvent{ID: "nope"}, day)
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestApply_UpdateThresholds(t *testing.T) {
	tests := []struct {
		name    string
		th      model.AlertThresholds
		wantErr bool
	}{
		{"valid", model.AlertThresholds{Warning: 70, Danger: 90}, false},
		{"equal", model.AlertThresholds{Warning: 90, Danger: 90}, true},
		{"inverted", model.AlertThresholds{Warning: 95, Danger: 80}, true},
		{"zero warning", model.AlertThresholds{Warning: 0, Danger: 80}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := Apply(funded(t), UpdateThresholds{Thresholds: tt.th}, day)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidThresholds)
				assert.Equal(t, model.DefaultThresholds(), next.Thresholds)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.th, next.Thresholds)
			}
		})
	}
}

func TestApply_SavingsGoalAndProgress(t *testing.T) {
	s := funded(t)
	s, _ = mustApply(t, s, AddSavingsProgress{Amount: d("300")})
	s, _ = mustApply(t, s, SetSavingsGoal{Target: d("500")})
	assert.Equal(t, "300", s.Savings.Progress.String())
	assert.Empty(t, s.Alerts)

	s, _ = mustApply(t, s, AddSavingsProgress{Amount: d("200")})
	require.Len(t, s.Alerts, 1)
	assert.Equal(t, "success:savings", s.Alerts[0].ID)

	_, _, err := Apply(s, AddSavingsProgress{Amount: d("-600")}, day)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	s, _ = mustApply(t, s, SetSavingsGoal{Target: d("1000")})
	assert.Equal(t, "1000", s.Savings.Progress.String())
}

func TestApply_ThemeAndResetAll(t *testing.T) {
	s := funded(t)
	_, _, err := Apply(s, SetTheme{Mode: "sepia"}, day)
	assert.ErrorIs(t, err, ErrInvalidTheme)

	s, fx := mustApply(t, s, SetTheme{Mode: model.ThemeLight})
	assert.True(t, fx.Fields.Has(FieldTheme))

	s, _ = mustApply(t, s, AddExpense{Expense: model.Expense{Category: "Food", Amount: d("700"), Date: "2025-03-07"}})
	s, fx = mustApply(t, s, ResetAll{})
	assert.True(t, fx.Reset)
	assert.False(t, fx.Fields.Has(FieldTheme))
	assert.Equal(t, model.ThemeLight, s.Theme)
	assert.True(t, s.Income.IsZero())
	assert.Empty(t, s.Expenses)
	assert.Empty(t, s.Alerts)
	assert.Equal(t, model.DefaultThresholds(), s.Thresholds)
}

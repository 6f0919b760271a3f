package budget

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func withPcts(pcts ...int) []model.BudgetCategory {
	names := []string{"Housing", "Transportation", "Food", "Utilities", "Savings", "Entertainment", "Misc"}
	out := make([]model.BudgetCategory, len(pcts))
	for i, p := range pcts {
		out[i] = model.BudgetCategory{Name: names[i], Percentage: p}
	}
	return out
}

func TestValidateTotal(t *testing.T) {
	tests := []struct {
		name  string
		cats  []model.BudgetCategory
		ok    bool
		total int
	}{
		{"default split", withPcts(30, 15, 15, 10, 20, 10), true, 100},
		{"short by five", withPcts(30, 15, 15, 10, 20, 5), false, 95},
		{"over", withPcts(50, 60), false, 110},
		{"empty", nil, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, total := ValidateTotal(tt.cats)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestComputeAmounts_SumCloseToIncome(t *testing.T) {
	cats := withPcts(33, 33, 34)
	for _, income := range []string{"0", "1", "999", "1234.56", "5000", "100001"} {
		out := ComputeAmounts(cats, d(income))
		sum := decimal.Zero
		for _, c := range out {
			sum = sum.Add(c.Allocated)
		}
		drift := sum.Sub(d(income)).Abs()
		assert.True(t, drift.LessThanOrEqual(decimal.NewFromInt(int64(len(cats)))),
			"income %s: sum %s drift %s", income, sum, drift)
	}
}

func TestComputeAmounts_ZeroAndNegativeIncome(t *testing.T) {
	for _, income := range []string{"0", "-250"} {
		for _, c := range ComputeAmounts(DefaultCategories(), d(income)) {
			assert.True(t, c.Allocated.IsZero(), "%s allocated %s for income %s", c.Name, c.Allocated, income)
		}
	}
}

func TestComputeAmounts_DoesNotModifyInput(t *testing.T) {
	cats := DefaultCategories()
	_ = ComputeAmounts(cats, d("5000"))
	assert.True(t, cats[0].Allocated.IsZero())
}

func TestApplyAllocation_Mismatch(t *testing.T) {
	_, err := ApplyAllocation(withPcts(30, 15, 15, 10, 20, 5), d("5000"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocationTotalMismatch))

	var mismatch *AllocationTotalMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 95, mismatch.Total)
}

func TestApplyAllocation_RejectsBadShape(t *testing.T) {
	dup := []model.BudgetCategory{{Name: "Food", Percentage: 50}, {Name: "food", Percentage: 50}}
	_, err := ApplyAllocation(dup, d("100"))
	assert.ErrorIs(t, err, ErrInvalidAllocation)

	neg := []model.BudgetCategory{{Name: "Food", Percentage: 120}, {Name: "Rent", Percentage: -20}}
	_, err = ApplyAllocation(neg, d("100"))
	assert.ErrorIs(t, err, ErrInvalidAllocation)

	blank := []model.BudgetCategory{{Name: " ", Percentage: 100}}
	_, err = ApplyAllocation(blank, d("100"))
	assert.ErrorIs(t, err, ErrInvalidAllocation)
}

func TestApplyAllocation_DerivesAmounts(t *testing.T) {
	out, err := ApplyAllocation(DefaultCategories(), d("5000"))
	require.NoError(t, err)
	assert.Equal(t, "1500", out[0].Allocated.String())
	assert.Equal(t, "750", out[2].Allocated.String())
}

func TestDefaultCategories_Idempotent(t *testing.T) {
	a, b := DefaultCategories(), DefaultCategories()
	assert.Equal(t, a, b)
	ok, total := ValidateTotal(a)
	assert.True(t, ok)
	assert.Equal(t, 100, total)

	a[0].Name = "changed"
	assert.Equal(t, "Housing", DefaultCategories()[0].Name)
}

func TestCarrySpent_CaseInsensitive(t *testing.T) {
	prev := []model.BudgetCategory{{Name: "Food", Spent: d("42")}, {Name: "Rent", Spent: d("900")}}
	next := []model.BudgetCategory{{Name: "FOOD", Percentage: 60}, {Name: "Travel", Percentage: 40}}
	out := CarrySpent(prev, next)
	assert.Equal(t, "42", out[0].Spent.String())
	assert.True(t, out[1].Spent.IsZero())
}

func TestRecordExpense_Rejects(t *testing.T) {
	base := model.Expense{Category: "Food", Amount: d("10"), Date: "2025-01-15"}
	tests := []struct {
		name  string
		edit  func(e *model.Expense)
		field string
	}{
		{"zero amount", func(e *model.Expense) { e.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(e *model.Expense) { e.Amount = d("-5") }, "amount"},
		{"empty category", func(e *model.Expense) { e.Category = "" }, "category"},
		{"empty date", func(e *model.Expense) { e.Date = "" }, "date"},
		{"bad date", func(e *model.Expense) { e.Date = "15/01/2025" }, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.edit(&e)
			out, err := RecordExpense(nil, e)
			assert.Nil(t, out)
			require.ErrorIs(t, err, ErrInvalidExpense)
			var ie *InvalidExpenseError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestRecordExpense_PrependsWithID(t *testing.T) {
	older := model.Expense{ID: "old", Category: "Rent", Amount: d("900"), Date: "2025-01-01"}
	out, err := RecordExpense([]model.Expense{older}, model.Expense{
		Category: "Food", Amount: d("42.50"), Date: "2025-01-15",
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Food", out[0].Category)
	assert.Equal(t, "42.5", out[0].Amount.String())
	assert.NotEmpty(t, out[0].ID)
	assert.Equal(t, "old", out[1].ID)
}

func TestSpendAggregates(t *testing.T) {
	expenses := []model.Expense{
		{Category: "Food", Amount: d("12.25")},
		{Category: "Rent", Amount: d("900")},
		{Category: "Food", Amount: d("7.75")},
	}
	assert.Equal(t, "920", TotalSpent(expenses).String())

	by := SpentByCategory(expenses)
	assert.Equal(t, "20", by["Food"].String())
	_, ok := by["Travel"]
	assert.False(t, ok)

	assert.Equal(t, "-20", RemainingBudget(d("900"), TotalSpent(expenses)).String())
}

func TestApplyExpenseToCategory_NoMatch(t *testing.T) {
	cats := []model.BudgetCategory{{Name: "Food", Allocated: d("500")}}
	out, ok := ApplyExpenseToCategory(cats, model.Expense{Category: "food", Amount: d("5")})
	assert.False(t, ok)
	assert.Equal(t, cats, out)
}

func TestCategoryAlerts_WarningThenDanger(t *testing.T) {
	th := model.DefaultThresholds()
	cats := []model.BudgetCategory{{Name: "Food", Allocated: d("500")}}

	cats, ok := ApplyExpenseToCategory(cats, model.Expense{Category: "Food", Amount: d("430")})
	require.True(t, ok)
	alerts := EvaluateCategoryAlerts(cats, th)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertWarning, alerts[0].Kind)
	assert.Equal(t, "warning:Food", alerts[0].ID)
	assert.Equal(t, "You've used 86% of your food budget.", alerts[0].Description)

	cats, _ = ApplyExpenseToCategory(cats, model.Expense{Category: "Food", Amount: d("100")})
	alerts = EvaluateCategoryAlerts(cats, th)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertDanger, alerts[0].Kind)
	assert.Equal(t, "Food Budget Exceeded", alerts[0].Title)
}

func TestCategoryAlerts_SkipsZeroAllocation(t *testing.T) {
	cats := []model.BudgetCategory{{Name: "Food", Spent: d("50")}}
	assert.Empty(t, EvaluateCategoryAlerts(cats, model.DefaultThresholds()))
}

func TestSavingsAlert(t *testing.T) {
	th := model.DefaultThresholds()

	a, ok := EvaluateSavingsAlert(model.SavingsGoal{Target: d("1000"), Progress: d("750")}, th)
	require.True(t, ok)
	assert.Equal(t, model.AlertInfo, a.Kind)

	a, ok = EvaluateSavingsAlert(model.SavingsGoal{Target: d("1000"), Progress: d("1000")}, th)
	require.True(t, ok)
	assert.Equal(t, model.AlertSuccess, a.Kind)

	_, ok = EvaluateSavingsAlert(model.SavingsGoal{Target: decimal.Zero, Progress: d("500")}, th)
	assert.False(t, ok)

	_, ok = EvaluateSavingsAlert(model.SavingsGoal{Target: d("1000"), Progress: d("700")}, th)
	assert.False(t, ok)

	th.SavingsNotifications = false
	_, ok = EvaluateSavingsAlert(model.SavingsGoal{Target: d("1000"), Progress: d("1000")}, th)
	assert.False(t, ok)
}

func TestRescaleSavingsGoal(t *testing.T) {
	assert.Equal(t, "1500", RescaleSavingsGoal(d("1000"), d("750"), d("2000")).String())
	assert.True(t, RescaleSavingsGoal(decimal.Zero, d("750"), d("2000")).IsZero())
}

func TestRescaleOnIncomeChange(t *testing.T) {
	cats := []model.BudgetCategory{{Name: "Food", Allocated: d("750")}, {Name: "Rent", Allocated: d("1500")}}
	out := RescaleOnIncomeChange(d("5000"), d("6000"), cats)
	assert.Equal(t, "900", out[0].Allocated.String())
	assert.Equal(t, "1800", out[1].Allocated.String())
	assert.Equal(t, "750", cats[0].Allocated.String())

	fromZero := RescaleOnIncomeChange(decimal.Zero, d("10"), []model.BudgetCategory{{Name: "x", Allocated: d("3")}})
	assert.Equal(t, "30", fromZero[0].Allocated.String())
}

func TestDismissAlert(t *testing.T) {
	alerts := []model.Alert{{ID: "warning:Food"}, {ID: "info:savings"}}

	once, err := DismissAlert(alerts, "warning:Food")
	require.NoError(t, err)
	assert.True(t, once[0].Dismissed)
	assert.False(t, alerts[0].Dismissed)

	twice, err := DismissAlert(once, "warning:Food")
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	assert.Len(t, Visible(twice), 1)

	_, err = DismissAlert(alerts, "danger:Rent")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestReconcile_CarriesDismissalAndDate(t *testing.T) {
	prev := []model.Alert{{ID: "warning:Food", Date: "2025-01-02", Dismissed: true}, {ID: "warning:Rent", Date: "2025-01-02"}}
	fresh := []model.Alert{{ID: "warning:Food"}, {ID: "danger:Rent"}}
	out := Reconcile(prev, fresh, "2025-01-10")
	require.Len(t, out, 2)
	assert.True(t, out[0].Dismissed)
	assert.Equal(t, "2025-01-02", out[0].Date)
	assert.False(t, out[1].Dismissed)
	assert.Equal(t, "2025-01-10", out[1].Date)
}

func TestComputeOverview(t *testing.T) {
	s := model.State{
		Income:   d("4000"),
		Expenses: []model.Expense{{Amount: d("1000")}, {Amount: d("500")}},
		Savings:  model.SavingsGoal{Target: d("800"), Progress: d("1000")},
		Alerts:   []model.Alert{{ID: "a"}, {ID: "b", Dismissed: true}},
	}
	o := ComputeOverview(s)
	assert.Equal(t, "1500", o.TotalSpent.String())
	assert.Equal(t, "2500", o.Remaining.String())
	assert.Equal(t, 38, o.UtilizationPct)
	assert.Equal(t, 100, o.SavingsPct)
	assert.Equal(t, 1, o.AlertCount)

	assert.Zero(t, ComputeOverview(model.State{}).UtilizationPct)
}

func TestTips(t *testing.T) {
	titles := func(tips []Tip) []string {
		var out []string
		for _, tp := range tips {
			out = append(out, tp.Title)
		}
		return out
	}

	assert.Equal(t, []string{"50/30/20 Rule", "Emergency Fund", "Expense Tracking"}, titles(Tips(decimal.Zero, decimal.Zero)))

	over := titles(Tips(d("5000"), d("4800")))
	assert.Equal(t, "Spending Alert", over[0])
	assert.NotContains(t, over, "Great Saving Habits")

	saving := Tips(d("800"), d("100"))
	assert.Equal(t, "Great Saving Habits", saving[0].Title)
	assert.Contains(t, saving[0].Description, "88%")
	assert.Equal(t, "Income Growth", saving[1].Title)
}

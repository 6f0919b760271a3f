package session

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/store"
)

var clock = func() time.Time { return time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC) }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func open(t *testing.T, kv store.KV, opts ...Option) *Session {
	t.Helper()
	s, err := Open(kv, append([]Option{WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	return s
}

// assertSameState compares the persisted encoding of every key, which
// ignores decimal representation details.
func assertSameState(t *testing.T, want, got model.State) {
	t.Helper()
	for _, k := range Keys {
		a, err := encode(k, want)
		require.NoError(t, err)
		b, err := encode(k, got)
		require.NoError(t, err)
		assert.Equal(t, a, b, k)
	}
}

func TestOpen_EmptyStoreIsFresh(t *testing.T) {
	s := open(t, store.NewMemory())
	assert.True(t, s.Fresh())

	st := s.State()
	assert.True(t, st.Income.IsZero())
	assert.Len(t, st.Categories, 6)
	assert.Equal(t, model.DefaultThresholds(), st.Thresholds)
	assert.Equal(t, model.ThemeDark, st.Theme)
}

func TestApply_PersistsOnlyChangedKeys(t *testing.T) {
	kv := store.NewMemory()
	s := open(t, kv)

	_, err := s.Apply(budget.SetIncome{Amount: d("5000"), Source: "Salary"})
	require.NoError(t, err)

	keys, _ := kv.Keys()
	assert.ElementsMatch(t, []string{KeyIncome, KeyIncomeHistory, KeyCategories}, keys)
	v, _, _ := kv.Get(KeyIncome)
	assert.Equal(t, "5000", v)
	assert.False(t, s.Fresh())
}

func TestApply_RoundTripThroughStore(t *testing.T) {
	kv := store.NewMemory()
	s := open(t, kv)
	for _, ev := range []budget.Event{
		budget.SetIncome{Amount: d("5000")},
		budget.AddExpense{Expense: model.Expense{Category: "Food", Amount: d("640.25"), Date: "2025-04-01", Notes: "groceries, weekly"}},
		budget.SetSavingsGoal{Target: d("1000")},
		budget.AddSavingsProgress{Amount: d("200")},
		budget.SetTheme{Mode: model.ThemeLight},
		budget.UpdateThresholds{Thresholds: model.AlertThresholds{Warning: 80, Danger: 95, SavingsGoalEnabled: true}},
	} {
		_, err := s.Apply(ev)
		require.NoError(t, err)
	}
	_, err := s.Apply(budget.DismissAlertEvent{ID: "warning:Food"})
	require.NoError(t, err)

	reloaded := open(t, kv)
	assertSameState(t, s.State(), reloaded.State())
	assert.Empty(t, budget.Visible(reloaded.State().Alerts))
}

func TestApply_RejectedEventTouchesNothing(t *testing.T) {
	kv := store.NewMemory()
	s := open(t, kv)
	_, err := s.Apply(budget.SetIncome{Amount: d("5000")})
	require.NoError(t, err)
	before, _ := kv.Keys()
	beforeState := s.State()

	_, err = s.Apply(budget.SaveAllocation{Categories: []model.BudgetCategory{
		{Name: "Housing", Percentage: 50}, {Name: "Food", Percentage: 45},
	}})
	var mismatch *budget.AllocationTotalMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 95, mismatch.Total)

	after, _ := kv.Keys()
	assert.Equal(t, before, after)
	raw, _, _ := kv.Get(KeyCategories)
	assert.Contains(t, raw, `"Transportation"`)
	assert.Equal(t, beforeState, s.State())
}

type failingKV struct{ *store.Memory }

func (failingKV) Write(store.Batch) error { return errors.New("disk full") }

func TestApply_WriteFailureKeepsState(t *testing.T) {
	s := open(t, failingKV{store.NewMemory()})
	_, err := s.Apply(budget.SetIncome{Amount: d("5000")})
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, s.State().Income.IsZero())
}

func TestApply_MissingCategoryIsLogged(t *testing.T) {
	var buf bytes.Buffer
	s := open(t, store.NewMemory(), WithLogger(zerolog.New(&buf)))
	_, err := s.Apply(budget.SetIncome{Amount: d("1000")})
	require.NoError(t, err)

	fx, err := s.Apply(budget.AddExpense{Expense: model.Expense{Category: "Pets", Amount: d("12"), Date: "2025-04-01"}})
	require.NoError(t, err)
	require.Len(t, fx.Notices, 1)
	assert.Contains(t, buf.String(), `"category":"Pets"`)
	assert.Len(t, s.State().Expenses, 1)
}

func TestOpen_FailsClosedPerKey(t *testing.T) {
	var buf bytes.Buffer
	kv := store.NewMemory()
	require.NoError(t, kv.Write(store.Batch{Set: map[string]string{
		KeyIncome:          "NaN",
		KeyExpenses:        `[{"id":"1","category":"Food","amount":-3,"date":"2025-01-01"}]`,
		KeyCategories:      `{"not":"an array"}`,
		KeySavingsGoal:     "-10",
		KeySavingsProgress: "250",
		KeyThresholds:      `{"warning":120,"danger":100,"savingsGoalEnabled":true,"savingsNotifications":true}`,
		KeyTheme:           "sepia",
		KeyAlerts:          `[{"id":"","type":"bogus"}]`,
	}}))

	s := open(t, kv, WithLogger(zerolog.New(&buf)))
	st := s.State()
	assert.True(t, st.Income.IsZero())
	assert.Empty(t, st.Expenses)
	assert.Len(t, st.Categories, 6)
	assert.True(t, st.Savings.Target.IsZero())
	assert.Equal(t, "250", st.Savings.Progress.String())
	assert.Equal(t, model.DefaultThresholds(), st.Thresholds)
	assert.Equal(t, model.ThemeDark, st.Theme)
	assert.Empty(t, st.Alerts)

	for _, k := range []string{KeyIncome, KeyExpenses, KeyCategories, KeySavingsGoal, KeyThresholds, KeyTheme, KeyAlerts} {
		assert.Contains(t, buf.String(), `"key":"`+k+`"`)
	}
}

func TestOpen_LegacyCategoriesDerivePercentage(t *testing.T) {
	kv := store.NewMemory()
	require.NoError(t, kv.Write(store.Batch{Set: map[string]string{
		KeyIncome:     "4000",
		KeyCategories: `[{"name":"Housing","allocated":2000,"spent":150},{"name":"Food","allocated":2000,"spent":0}]`,
		KeyTheme:      `"light"`,
	}}))

	st := open(t, kv).State()
	require.Len(t, st.Categories, 2)
	assert.Equal(t, 50, st.Categories[0].Percentage)
	assert.Equal(t, "150", st.Categories[0].Spent.String())
	assert.Equal(t, model.ThemeLight, st.Theme)
}

func TestOpen_ConfiguredDefaultThresholds(t *testing.T) {
	th := model.AlertThresholds{Warning: 60, Danger: 90}
	s := open(t, store.NewMemory(), WithDefaultThresholds(th))
	assert.Equal(t, th, s.State().Thresholds)

	bad := open(t, store.NewMemory(), WithDefaultThresholds(model.AlertThresholds{Warning: 90, Danger: 60}))
	assert.Equal(t, model.DefaultThresholds(), bad.State().Thresholds)
}

func TestResetAll_ClearsKeysButTheme(t *testing.T) {
	kv, err := store.Open(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()

	s := open(t, kv)
	_, err = s.Apply(budget.SetIncome{Amount: d("3000")})
	require.NoError(t, err)
	_, err = s.Apply(budget.SetTheme{Mode: model.ThemeLight})
	require.NoError(t, err)

	hist, err := s.History("")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "2025-04-02", hist[0].Day)
	assert.Equal(t, "3000", hist[0].Income.String())

	_, err = s.Apply(budget.ResetAll{})
	require.NoError(t, err)

	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyTheme}, keys)
	hist, err = s.History("")
	require.NoError(t, err)
	assert.Empty(t, hist)

	reloaded := open(t, kv)
	assert.Equal(t, model.ThemeLight, reloaded.State().Theme)
	assert.True(t, reloaded.State().Income.IsZero())
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("42.50")
	require.NoError(t, err)
	assert.Equal(t, "42.5", v.String())

	_, err = ParseAmount("abc")
	assert.ErrorIs(t, err, budget.ErrInvalidAmount)
	_, err = ParseAmount("-1")
	assert.ErrorIs(t, err, budget.ErrInvalidAmount)
}

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/model"
)

// Persisted keys.
const (
	KeyIncome          = "userIncome"
	KeyExpenses        = "userExpenses"
	KeyCategories      = "userBudgetCategories"
	KeySavingsGoal     = "userSavingsGoal"
	KeySavingsProgress = "userSavingsProgress"
	KeyThresholds      = "alertThresholds"
	KeyTheme           = "theme"
	KeyIncomeHistory   = "incomeHistory"
	KeyAlerts          = "budgetAlerts"
)

// Keys lists every key in load order. Income comes before categories so
// legacy category rows can derive their percentage.
var Keys = []string{
	KeyIncome, KeyIncomeHistory, KeyExpenses, KeyCategories,
	KeySavingsGoal, KeySavingsProgress, KeyThresholds, KeyAlerts, KeyTheme,
}

var errSchema = errors.New("schema mismatch")

func schemaErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errSchema, fmt.Sprintf(format, args...))
}

// parseMoney accepts a nonnegative decimal string.
func parseMoney(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, schemaErr("not a number: %q", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, schemaErr("negative amount %s", d)
	}
	return d, nil
}

func parseExpenses(raw string) ([]model.Expense, error) {
	var out []model.Expense
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, schemaErr("expenses: %v", err)
	}
	for i, e := range out {
		if err := budget.ValidateExpense(e); err != nil {
			return nil, schemaErr("expense %d: %v", i, err)
		}
		if e.ID == "" {
			return nil, schemaErr("expense %d: missing id", i)
		}
	}
	return out, nil
}

// storedCategory accepts rows written without a percentage.
type storedCategory struct {
	Name       string           `json:"name"`
	Percentage *int             `json:"percentage"`
	Allocated  *decimal.Decimal `json:"allocated"`
	Spent      *decimal.Decimal `json:"spent"`
}

func parseCategories(raw string, income decimal.Decimal) ([]model.BudgetCategory, error) {
	var rows []storedCategory
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, schemaErr("categories: %v", err)
	}
	if len(rows) == 0 {
		return nil, schemaErr("categories: empty")
	}
	out := make([]model.BudgetCategory, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, r := range rows {
		if strings.TrimSpace(r.Name) == "" {
			return nil, schemaErr("category %d: missing name", i)
		}
		if seen[r.Name] {
			return nil, schemaErr("category %q: duplicate", r.Name)
		}
		seen[r.Name] = true
		if r.Allocated == nil || r.Allocated.IsNegative() {
			return nil, schemaErr("category %q: bad allocated", r.Name)
		}
		c := model.BudgetCategory{Name: r.Name, Allocated: *r.Allocated}
		if r.Spent != nil {
			if r.Spent.IsNegative() {
				return nil, schemaErr("category %q: negative spent", r.Name)
			}
			c.Spent = *r.Spent
		}
		switch {
		case r.Percentage != nil:
			if *r.Percentage < 0 || *r.Percentage > 100 {
				return nil, schemaErr("category %q: percentage %d", r.Name, *r.Percentage)
			}
			c.Percentage = *r.Percentage
		case income.IsPositive():
			c.Percentage = int(r.Allocated.Mul(decimal.NewFromInt(100)).Div(income).Round(0).IntPart())
		}
		out[i] = c
	}
	return out, nil
}

func parseThresholds(raw string) (model.AlertThresholds, error) {
	var th model.AlertThresholds
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&th); err != nil {
		return th, schemaErr("thresholds: %v", err)
	}
	if err := budget.ValidateThresholds(th); err != nil {
		return th, schemaErr("%v", err)
	}
	return th, nil
}

func parseTheme(raw string) (model.ThemeMode, error) {
	m := model.ThemeMode(strings.Trim(strings.TrimSpace(raw), `"`))
	if !m.Valid() {
		return "", schemaErr("theme %q", raw)
	}
	return m, nil
}

func parseIncomeHistory(raw string) ([]model.IncomeEntry, error) {
	var out []model.IncomeEntry
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, schemaErr("income history: %v", err)
	}
	for i, e := range out {
		if e.Amount.IsNegative() {
			return nil, schemaErr("income entry %d: negative amount", i)
		}
		if _, err := time.Parse(model.DateLayout, e.Date); err != nil {
			return nil, schemaErr("income entry %d: bad date %q", i, e.Date)
		}
	}
	return out, nil
}

func parseAlerts(raw string) ([]model.Alert, error) {
	var out []model.Alert
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, schemaErr("alerts: %v", err)
	}
	for i, a := range out {
		if a.ID == "" || !a.Kind.Valid() {
			return nil, schemaErr("alert %d: bad id or kind", i)
		}
	}
	return out, nil
}

// encode serializes the value for one field of s.
func encode(key string, s model.State) (string, error) {
	switch key {
	case KeyIncome:
		return s.Income.String(), nil
	case KeySavingsGoal:
		return s.Savings.Target.String(), nil
	case KeySavingsProgress:
		return s.Savings.Progress.String(), nil
	case KeyTheme:
		return string(s.Theme), nil
	case KeyExpenses:
		return marshal(nonNil(s.Expenses))
	case KeyCategories:
		return marshal(nonNil(s.Categories))
	case KeyThresholds:
		return marshal(s.Thresholds)
	case KeyIncomeHistory:
		return marshal(nonNil(s.IncomeHistory))
	case KeyAlerts:
		return marshal(nonNil(s.Alerts))
	}
	return "", fmt.Errorf("unknown key %q", key)
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// fieldKeys maps reducer fields to store keys.
var fieldKeys = []struct {
	field budget.Field
	key   string
}{
	{budget.FieldIncome, KeyIncome},
	{budget.FieldIncomeHistory, KeyIncomeHistory},
	{budget.FieldExpenses, KeyExpenses},
	{budget.FieldCategories, KeyCategories},
	{budget.FieldSavingsGoal, KeySavingsGoal},
	{budget.FieldSavingsProgress, KeySavingsProgress},
	{budget.FieldThresholds, KeyThresholds},
	{budget.FieldAlerts, KeyAlerts},
	{budget.FieldTheme, KeyTheme},
}

package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/model"
)

// savingsInfoPercent is the progress at which the savings info alert fires.
const savingsInfoPercent = 75

// SavingsSubject is the alert subject used for the savings goal.
const SavingsSubject = "savings"

// AlertID builds the stable identity for an alert.
func AlertID(kind model.AlertKind, subject string) string {
	return string(kind) + ":" + subject
}

// PercentUsed returns spent/allocated*100. The caller must ensure allocated > 0.
func PercentUsed(c model.BudgetCategory) decimal.Decimal {
	return c.Spent.Mul(hundred).Div(c.Allocated)
}

// EvaluateCategoryAlerts produces at most one alert per category, danger
// taking precedence over warning. Categories with nothing allocated are
// skipped. Dates are left empty for Reconcile to fill.
func EvaluateCategoryAlerts(categories []model.BudgetCategory, th model.AlertThresholds) []model.Alert {
	var out []model.Alert
	for _, c := range categories {
		if !c.Allocated.IsPositive() {
			continue
		}
		pct := PercentUsed(c)
		switch {
		case pct.GreaterThanOrEqual(decimal.NewFromInt(int64(th.Danger))):
			out = append(out, model.Alert{
				ID:          AlertID(model.AlertDanger, c.Name),
				Kind:        model.AlertDanger,
				Title:       c.Name + " Budget Exceeded",
				Description: fmt.Sprintf("You've spent %s%% of your %s budget.", pct.StringFixed(0), strings.ToLower(c.Name)),
				Category:    c.Name,
			})
		case pct.GreaterThanOrEqual(decimal.NewFromInt(int64(th.Warning))):
			out = append(out, model.Alert{
				ID:          AlertID(model.AlertWarning, c.Name),
				Kind:        model.AlertWarning,
				Title:       c.Name + " Budget Alert",
				Description: fmt.Sprintf("You've used %s%% of your %s budget.", pct.StringFixed(0), strings.ToLower(c.Name)),
				Category:    c.Name,
			})
		}
	}
	return out
}

// EvaluateSavingsAlert returns the savings alert, if any. Both savings flags
// must be enabled and the target must be positive.
func EvaluateSavingsAlert(goal model.SavingsGoal, th model.AlertThresholds) (model.Alert, bool) {
	if !th.SavingsGoalEnabled || !th.SavingsNotifications {
		return model.Alert{}, false
	}
	if !goal.Target.IsPositive() {
		return model.Alert{}, false
	}
	pct := goal.PercentComplete()
	switch {
	case pct.GreaterThanOrEqual(hundred):
		return model.Alert{
			ID:          AlertID(model.AlertSuccess, SavingsSubject),
			Kind:        model.AlertSuccess,
			Title:       "Savings Goal Achieved!",
			Description: fmt.Sprintf("Congratulations! You've reached your savings goal of %s.", goal.Target.StringFixed(0)),
		}, true
	case pct.GreaterThanOrEqual(decimal.NewFromInt(savingsInfoPercent)):
		return model.Alert{
			ID:          AlertID(model.AlertInfo, SavingsSubject),
			Kind:        model.AlertInfo,
			Title:       "Savings Goal Progress",
			Description: fmt.Sprintf("You're %s%% of the way to your savings goal of %s.", pct.StringFixed(0), goal.Target.StringFixed(0)),
		}, true
	}
	return model.Alert{}, false
}

// Evaluate runs every rule against the state.
func Evaluate(s model.State) []model.Alert {
	alerts := EvaluateCategoryAlerts(s.Categories, s.Thresholds)
	if a, ok := EvaluateSavingsAlert(s.Savings, s.Thresholds); ok {
		alerts = append(alerts, a)
	}
	return alerts
}

// Reconcile merges a fresh evaluation with the previous alert set. Alerts
// that are no longer produced disappear. For ids present in both, the
// dismissed flag and first-seen date carry over; new alerts are dated today.
func Reconcile(previous, fresh []model.Alert, today string) []model.Alert {
	prev := make(map[string]model.Alert, len(previous))
	for _, a := range previous {
		prev[a.ID] = a
	}
	var out []model.Alert
	for _, a := range fresh {
		if old, ok := prev[a.ID]; ok {
			a.Dismissed = old.Dismissed
			a.Date = old.Date
		}
		if a.Date == "" {
			a.Date = today
		}
		out = append(out, a)
	}
	return out
}

// DismissAlert flags the alert with the given id. Dismissing twice is a no-op.
func DismissAlert(alerts []model.Alert, id string) ([]model.Alert, error) {
	out := append([]model.Alert(nil), alerts...)
	for i := range out {
		if out[i].ID == id {
			out[i].Dismissed = true
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, id)
}

// Visible filters out dismissed alerts.
func Visible(alerts []model.Alert) []model.Alert {
	var out []model.Alert
	for _, a := range alerts {
		if !a.Dismissed {
			out = append(out, a)
		}
	}
	return out
}

package report

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/theirongolddev/cbudget/internal/model"
)

// Forecast projects month-end spend from the current month's expenses.
type Forecast struct {
	Month       string          `json:"month" yaml:"month"`
	SpentToDate decimal.Decimal `json:"spent_to_date" yaml:"spent_to_date"`
	DailyRate   decimal.Decimal `json:"daily_rate" yaml:"daily_rate"`
	Projected   decimal.Decimal `json:"projected" yaml:"projected"`
	DaysElapsed int             `json:"days_elapsed" yaml:"days_elapsed"`
	DaysInMonth int             `json:"days_in_month" yaml:"days_in_month"`
	Method      string          `json:"method" yaml:"method"` // "regression" or "burn-rate"
}

// OverBudget reports whether the projection exceeds income.
func (f Forecast) OverBudget(income decimal.Decimal) bool {
	return income.IsPositive() && f.Projected.GreaterThan(income)
}

// ForecastMonth fits a least-squares line through cumulative daily spend for
// the month containing now and extends it to the month's last day. With a
// single day of data it falls back to the average burn rate. The projection
// never drops below what has already been spent.
func ForecastMonth(expenses []model.Expense, now time.Time) Forecast {
	start, end := Monthly.Window(now)
	daysInMonth := int(end.Sub(start).Hours()/24 + 0.5)
	elapsed := now.Day()

	daily := make([]float64, elapsed)
	spent := decimal.Zero
	for _, e := range Filter(expenses, Monthly, now) {
		t, err := time.ParseInLocation(model.DateLayout, e.Date, now.Location())
		if err != nil || t.Day() > elapsed {
			continue
		}
		daily[t.Day()-1] += e.Amount.InexactFloat64()
		spent = spent.Add(e.Amount)
	}

	f := Forecast{
		Month:       start.Format("2006-01"),
		SpentToDate: spent,
		DaysElapsed: elapsed,
		DaysInMonth: daysInMonth,
	}

	if elapsed < 2 {
		f.Method = "burn-rate"
		f.DailyRate = spent.Div(decimal.NewFromInt(int64(elapsed)))
		f.Projected = f.DailyRate.Mul(decimal.NewFromInt(int64(daysInMonth))).Round(2)
		f.DailyRate = f.DailyRate.Round(2)
		return f
	}

	xs := make([]float64, elapsed)
	ys := make([]float64, elapsed)
	var cum float64
	for i := range daily {
		cum += daily[i]
		xs[i] = float64(i + 1)
		ys[i] = cum
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	projected := alpha + beta*float64(daysInMonth)
	if math.IsNaN(projected) || math.IsInf(projected, 0) {
		projected = 0
	}

	f.Method = "regression"
	f.DailyRate = decimal.NewFromFloat(math.Max(beta, 0)).Round(2)
	f.Projected = decimal.Max(decimal.NewFromFloat(projected).Round(2), spent)
	return f
}

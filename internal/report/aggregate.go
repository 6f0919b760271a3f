// Package report turns budget state into chart series and export files.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/model"
)

// Timeframe selects the calendar period an export covers.
type Timeframe string

// Timeframes.
const (
	Monthly   Timeframe = "monthly"
	Quarterly Timeframe = "quarterly"
	Yearly    Timeframe = "yearly"
)

// ParseTimeframe accepts monthly, quarterly or yearly.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(s))); tf {
	case Monthly, Quarterly, Yearly:
		return tf, nil
	}
	return "", fmt.Errorf("unknown timeframe %q (want monthly, quarterly or yearly)", s)
}

// Title is the capitalized name used in report headings.
func (tf Timeframe) Title() string {
	if tf == "" {
		return ""
	}
	return strings.ToUpper(string(tf[:1])) + string(tf[1:])
}

// Window returns the [start, end) dates of the calendar period containing now.
func (tf Timeframe) Window(now time.Time) (time.Time, time.Time) {
	y, m, _ := now.Date()
	loc := now.Location()
	switch tf {
	case Quarterly:
		qm := time.Month((int(m)-1)/3*3 + 1)
		start := time.Date(y, qm, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 3, 0)
	case Yearly:
		start := time.Date(y, 1, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	default:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	}
}

// Filter keeps the expenses dated inside the timeframe's window.
// Unparseable dates are dropped.
func Filter(expenses []model.Expense, tf Timeframe, now time.Time) []model.Expense {
	start, end := tf.Window(now)
	var out []model.Expense
	for _, e := range expenses {
		t, err := time.ParseInLocation(model.DateLayout, e.Date, now.Location())
		if err != nil {
			continue
		}
		if !t.Before(start) && t.Before(end) {
			out = append(out, e)
		}
	}
	return out
}

// CategoryTotal is the spend of one category.
type CategoryTotal struct {
	Category string          `json:"category" yaml:"category"`
	Amount   decimal.Decimal `json:"amount" yaml:"amount"`
	Share    float64         `json:"share_pct" yaml:"share_pct"` // of total spend
	Count    int             `json:"count" yaml:"count"`
}

// ByCategory sums expenses per category, largest first. Ties sort by name.
func ByCategory(expenses []model.Expense) []CategoryTotal {
	idx := make(map[string]int)
	var out []CategoryTotal
	total := decimal.Zero
	for _, e := range expenses {
		i, ok := idx[e.Category]
		if !ok {
			i = len(out)
			idx[e.Category] = i
			out = append(out, CategoryTotal{Category: e.Category})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
		out[i].Count++
		total = total.Add(e.Amount)
	}
	if total.IsPositive() {
		for i := range out {
			out[i].Share = out[i].Amount.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthTotal is the spend in one calendar month ("2006-01").
type MonthTotal struct {
	Month  string          `json:"month" yaml:"month"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

// ByMonth returns the last n months ending with now's month, oldest first.
// Months without expenses are present with zero.
func ByMonth(expenses []model.Expense, now time.Time, n int) []MonthTotal {
	if n <= 0 {
		return nil
	}
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)

	out := make([]MonthTotal, n)
	idx := make(map[string]int, n)
	for i := range out {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out[i] = MonthTotal{Month: key, Amount: decimal.Zero}
		idx[key] = i
	}
	for _, e := range expenses {
		if len(e.Date) < 7 {
			continue
		}
		if i, ok := idx[e.Date[:7]]; ok {
			out[i].Amount = out[i].Amount.Add(e.Amount)
		}
	}
	return out
}

// SortedByDate returns a copy of expenses ordered oldest first.
func SortedByDate(expenses []model.Expense) []model.Expense {
	out := append([]model.Expense(nil), expenses...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

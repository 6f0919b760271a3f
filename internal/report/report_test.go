package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/cbudget/internal/model"
)

var now = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleExpenses() []model.Expense {
	return []model.Expense{
		{ID: "5", Category: "Food", Amount: d("30"), Date: "2025-05-19", Notes: `lunch, "team"`},
		{ID: "4", Category: "Housing", Amount: d("1200"), Date: "2025-05-01"},
		{ID: "3", Category: "Food", Amount: d("70"), Date: "2025-04-28"},
		{ID: "2", Category: "Transport", Amount: d("45.5"), Date: "2025-02-10"},
		{ID: "1", Category: "Food", Amount: d("12"), Date: "2024-12-31"},
	}
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("Quarterly")
	require.NoError(t, err)
	assert.Equal(t, Quarterly, tf)
	assert.Equal(t, "Quarterly", tf.Title())

	_, err = ParseTimeframe("weekly")
	assert.Error(t, err)
}

func TestWindowAndFilter(t *testing.T) {
	start, end := Quarterly.Window(now)
	assert.Equal(t, "2025-04-01", start.Format(model.DateLayout))
	assert.Equal(t, "2025-07-01", end.Format(model.DateLayout))

	ids := func(es []model.Expense) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}
	assert.Equal(t, []string{"5", "4"}, ids(Filter(sampleExpenses(), Monthly, now)))
	assert.Equal(t, []string{"5", "4", "3"}, ids(Filter(sampleExpenses(), Quarterly, now)))
	assert.Equal(t, []string{"5", "4", "3", "2"}, ids(Filter(sampleExpenses(), Yearly, now)))
}

func TestByCategory(t *testing.T) {
	totals := ByCategory(sampleExpenses())
	require.Len(t, totals, 3)
	assert.Equal(t, "Housing", totals[0].Category)
	assert.Equal(t, "Food", totals[1].Category)
	assert.Equal(t, "112", totals[1].Amount.String())
	assert.Equal(t, 3, totals[1].Count)

	var share float64
	for _, c := range totals {
		share += c.Share
	}
	assert.InDelta(t, 100, share, 1e-9)
	assert.Empty(t, ByCategory(nil))
}

func TestByMonth(t *testing.T) {
	months := ByMonth(sampleExpenses(), now, 6)
	require.Len(t, months, 6)
	assert.Equal(t, "2024-12", months[0].Month)
	assert.Equal(t, "12", months[0].Amount.String())
	assert.Equal(t, "2025-01", months[1].Month)
	assert.True(t, months[1].Amount.IsZero())
	assert.Equal(t, "2025-05", months[5].Month)
	assert.Equal(t, "1230", months[5].Amount.String())
	assert.Nil(t, ByMonth(sampleExpenses(), now, 0))
}

func TestPieSlices_Geometry(t *testing.T) {
	slices := PieSlices([]CategoryTotal{
		{Category: "Housing", Amount: d("600")},
		{Category: "Food", Amount: d("300")},
		{Category: "Fun", Amount: d("100")},
	})
	require.Len(t, slices, 3)

	assert.True(t, slices[0].LargeArc)
	assert.False(t, slices[1].LargeArc)
	assert.InDelta(t, 0, slices[0].StartAngle, 1e-9)
	assert.InDelta(t, 216, slices[0].EndAngle, 1e-9)
	assert.InDelta(t, 360, slices[2].EndAngle, 1e-9)

	var sweep float64
	for i, s := range slices {
		sweep += s.EndAngle - s.StartAngle
		if i > 0 {
			assert.InDelta(t, slices[i-1].EndAngle, s.StartAngle, 1e-9)
		}
	}
	assert.InDelta(t, 360, sweep, 1e-9)

	assert.InDelta(t, 90, slices[0].Start.X, 1e-9)
	assert.InDelta(t, 50, slices[0].Start.Y, 1e-9)
	r := math.Hypot(slices[1].End.X-50, slices[1].End.Y-50)
	assert.InDelta(t, 40, r, 1e-9)
	assert.True(t, strings.HasPrefix(slices[0].Path(), "M 50 50 L 90.000 50.000 A 40 40 0 1 1 "))

	assert.Nil(t, PieSlices(nil))
}

func TestForecastMonth_Regression(t *testing.T) {
	var expenses []model.Expense
	for day := 1; day <= 10; day++ {
		expenses = append(expenses, model.Expense{Category: "Food", Amount: d("10"), Date: time.Date(2025, 4, day, 0, 0, 0, 0, time.UTC).Format(model.DateLayout)})
	}
	f := ForecastMonth(expenses, time.Date(2025, 4, 10, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, "regression", f.Method)
	assert.Equal(t, 30, f.DaysInMonth)
	assert.Equal(t, "100", f.SpentToDate.String())
	assert.Equal(t, "10", f.DailyRate.String())
	assert.Equal(t, "300", f.Projected.String())
	assert.True(t, f.OverBudget(d("250")))
	assert.False(t, f.OverBudget(decimal.Zero))
}

func TestForecastMonth_FirstDayBurnRate(t *testing.T) {
	f := ForecastMonth([]model.Expense{{Amount: d("20"), Date: "2025-02-01"}}, time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, "burn-rate", f.Method)
	assert.Equal(t, 28, f.DaysInMonth)
	assert.Equal(t, "560", f.Projected.String())
}

func TestForecastMonth_NeverBelowSpent(t *testing.T) {
	expenses := []model.Expense{{Amount: d("500"), Date: "2025-05-01"}}
	f := ForecastMonth(expenses, now)
	assert.True(t, f.Projected.GreaterThanOrEqual(d("500")))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "budget_export_monthly_2025-05-20.csv", FileName(CSV, Monthly, now))
	assert.Equal(t, "budget_report_yearly_2025-05-20.pdf", FileName(PDF, Yearly, now))
	assert.Equal(t, "budget_report_quarterly_2025-05-20.svg", FileName(SVG, Quarterly, now))

	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, YAML, f)
	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func sampleState() model.State {
	return model.State{
		Income:   d("3000"),
		Expenses: sampleExpenses(),
		Categories: []model.BudgetCategory{
			{Name: "Housing", Percentage: 50, Allocated: d("1500"), Spent: d("1200")},
			{Name: "Food", Percentage: 50, Allocated: d("1500"), Spent: d("112")},
		},
		Alerts: []model.Alert{{ID: "warning:Housing", Kind: model.AlertWarning}, {ID: "x", Kind: model.AlertInfo, Dismissed: true}},
	}
}

func TestBuild(t *testing.T) {
	r := Build(sampleState(), Monthly, now)
	assert.Equal(t, "2025-05-01", r.From)
	assert.Equal(t, "2025-05-31", r.To)
	assert.Equal(t, "1230", r.TotalExpenses.String())
	assert.Equal(t, "1770", r.Balance.String())
	assert.Len(t, r.Expenses, 2)
	assert.Len(t, r.Alerts, 1)
	require.NotNil(t, r.Forecast)

	assert.Nil(t, Build(sampleState(), Yearly, now).Forecast)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, Build(sampleState(), Monthly, now)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Category", "Amount", "Date", "Notes"}, rows[0])
	assert.Equal(t, []string{"Food", "30", "2025-05-19", `lunch, "team"`}, rows[1])
	assert.Equal(t, []string{"Housing", "1200", "2025-05-01", ""}, rows[2])
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, PDF, Build(sampleState(), Quarterly, now)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "%PDF-1."))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "%%EOF"))
	assert.Contains(t, out, "(cbudget Quarterly Financial Report) Tj")
	assert.Contains(t, out, "(Total Income: $3,000.00) Tj")
	assert.Contains(t, out, "(Housing: $1,200.00) Tj")
	assert.Contains(t, out, "(Balance: $1,700.00) Tj")
	assert.NotContains(t, out, "Projected month-end spend")
}

func TestWritePDFKeepsAccentedText(t *testing.T) {
	st := sampleState()
	st.Expenses = []model.Expense{{ID: "1", Category: "Café", Amount: d("12"), Date: "2025-05-10"}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, PDF, Build(st, Monthly, now)))
	out := buf.String()

	// cp1252 encodes é as the single byte 0xE9.
	assert.Contains(t, out, "(Caf\xe9: $12.00) Tj")
	assert.NotContains(t, out, "Caf?")
	assert.Contains(t, out, "Projected month-end spend")
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, ByCategory(sampleExpenses())))
	out := buf.String()
	assert.Contains(t, out, "<svg ")
	assert.Contains(t, out, `viewBox="0 0 220 100"`)
	assert.Equal(t, 3, strings.Count(out, "<path "))
	assert.Contains(t, out, "Housing")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))

	buf.Reset()
	require.NoError(t, WriteSVG(&buf, []CategoryTotal{{Category: "Bills & <Fees>", Amount: d("10")}}))
	assert.Contains(t, buf.String(), "Bills &amp; &lt;Fees&gt;")
	assert.NotContains(t, buf.String(), "<Fees>")

	buf.Reset()
	require.NoError(t, WriteSVG(&buf, nil))
	assert.Contains(t, buf.String(), "No expenses")
}

func TestWriteJSONAndYAML(t *testing.T) {
	r := Build(sampleState(), Quarterly, now)

	var jbuf bytes.Buffer
	require.NoError(t, Write(&jbuf, JSON, r))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(jbuf.Bytes(), &decoded))
	assert.Equal(t, "quarterly", decoded["timeframe"])
	assert.Len(t, decoded["expenses"], 3)
	// Money is a bare JSON number, matching the stored keys.
	assert.Equal(t, 3000.0, decoded["income"])
	assert.Contains(t, jbuf.String(), `"total_expenses": 1300,`)
	assert.Contains(t, jbuf.String(), `"amount": 30,`)

	var ybuf bytes.Buffer
	require.NoError(t, Write(&ybuf, YAML, r))
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(ybuf.Bytes(), &y))
	assert.Equal(t, "2025-04-01", y["from"])
	assert.Equal(t, "1300", y["total_expenses"])
}

package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/model"
)

// Format is an export file type.
type Format string

// Formats.
const (
	CSV  Format = "csv"
	PDF  Format = "pdf"
	SVG  Format = "svg"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts one of the export formats, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, PDF, SVG, JSON, YAML:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, pdf, svg, json or yaml)", s)
}

// FileName builds the download name, e.g. budget_export_monthly_2025-01-31.csv.
// Tabular exports use the "export" stem and documents use "report".
func FileName(f Format, tf Timeframe, now time.Time) string {
	stem := "budget_report"
	if f == CSV || f == JSON || f == YAML {
		stem = "budget_export"
	}
	return fmt.Sprintf("%s_%s_%s.%s", stem, tf, now.Format(model.DateLayout), f)
}

// Report is a read-only summary of one timeframe.
type Report struct {
	Timeframe     Timeframe              `json:"timeframe" yaml:"timeframe"`
	GeneratedOn   string                 `json:"generated_on" yaml:"generated_on"`
	From          string                 `json:"from" yaml:"from"`
	To            string                 `json:"to" yaml:"to"` // inclusive
	Income        decimal.Decimal        `json:"income" yaml:"income"`
	TotalExpenses decimal.Decimal        `json:"total_expenses" yaml:"total_expenses"`
	Balance       decimal.Decimal        `json:"balance" yaml:"balance"`
	Categories    []CategoryTotal        `json:"categories" yaml:"categories"`
	Budget        []model.BudgetCategory `json:"budget" yaml:"budget"`
	Expenses      []model.Expense        `json:"expenses" yaml:"expenses"`
	Alerts        []model.Alert          `json:"alerts,omitempty" yaml:"alerts,omitempty"`
	Forecast      *Forecast              `json:"forecast,omitempty" yaml:"forecast,omitempty"`
}

// Build assembles the report for tf from a state snapshot.
func Build(s model.State, tf Timeframe, now time.Time) Report {
	start, end := tf.Window(now)
	expenses := Filter(s.Expenses, tf, now)
	total := budget.TotalSpent(expenses)
	r := Report{
		Timeframe:     tf,
		GeneratedOn:   now.Format(model.DateLayout),
		From:          start.Format(model.DateLayout),
		To:            end.AddDate(0, 0, -1).Format(model.DateLayout),
		Income:        s.Income,
		TotalExpenses: total,
		Balance:       budget.RemainingBudget(s.Income, total),
		Categories:    ByCategory(expenses),
		Budget:        s.Categories,
		Expenses:      expenses,
		Alerts:        budget.Visible(s.Alerts),
	}
	if tf == Monthly {
		f := ForecastMonth(s.Expenses, now)
		r.Forecast = &f
	}
	return r
}

// Write renders r in the given format.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case CSV:
		return WriteCSV(w, r.Expenses)
	case PDF:
		return WritePDF(w, r)
	case SVG:
		return WriteSVG(w, r.Categories)
	case JSON:
		return WriteJSON(w, r)
	case YAML:
		return WriteYAML(w, r)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteCSV writes one row per expense under a Category,Amount,Date,Notes header.
func WriteCSV(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Amount", "Date", "Notes"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range expenses {
		if err := cw.Write([]string{e.Category, e.Amount.String(), e.Date, e.Notes}); err != nil {
			return fmt.Errorf("writing expense %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes r as YAML.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

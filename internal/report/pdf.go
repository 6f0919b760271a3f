package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/model"
)

// WritePDF writes a single-page letter summary: title, period, income,
// per-category spend, total, balance and, for monthly reports, the forecast.
// Text is encoded as cp1252 so accented category names survive the core
// Helvetica font.
func WritePDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(false)
	pdf.SetMargins(50, 42, 50)
	pdf.SetTitle("cbudget "+r.Timeframe.Title()+" Financial Report", true)
	pdf.SetCreator("cbudget", false)
	if gen, err := time.Parse(model.DateLayout, r.GeneratedOn); err == nil {
		pdf.SetCreationDate(gen)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1252")

	line := func(size float64, style, text string, gap float64) {
		pdf.SetFont("Helvetica", style, size)
		pdf.CellFormat(0, size+4, tr(text), "", 1, "L", false, 0, "")
		if gap > 0 {
			pdf.Ln(gap)
		}
	}

	pdf.AddPage()
	line(16, "B", "cbudget "+r.Timeframe.Title()+" Financial Report", 12)
	line(11, "", fmt.Sprintf("Generated on: %s  Period: %s to %s", r.GeneratedOn, r.From, r.To), 12)

	line(12, "B", "Income Summary", 4)
	line(11, "", "Total Income: "+pdfMoney(r.Income), 12)

	line(12, "B", "Expense Summary", 4)
	for _, c := range r.Categories {
		line(11, "", fmt.Sprintf("%s: %s", c.Category, pdfMoney(c.Amount)), 0)
	}
	line(11, "", "Total Expenses: "+pdfMoney(r.TotalExpenses), 0)
	line(11, "B", "Balance: "+pdfMoney(r.Balance), 0)

	if r.Forecast != nil {
		pdf.Ln(12)
		line(11, "", "Projected month-end spend: "+pdfMoney(r.Forecast.Projected), 0)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return nil
}

func pdfMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

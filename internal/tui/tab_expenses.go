package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// expensesState holds the expenses tab state.
type expensesState struct {
	cursor int
	offset int // scroll offset for the list

	form *huh.Form
	vals *expenseValues
}

type expenseValues struct {
	category string
	amount   string
	date     string
	notes    string
}

func (s *expensesState) clamp(n int) {
	s.cursor = min(max(s.cursor, 0), max(n-1, 0))
}

func (s *expensesState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

// follow scrolls the list so the cursor stays within rows visible lines.
func (s *expensesState) follow(rows, n int) {
	s.offset, _ = listWindow(s.cursor, s.offset, n, rows)
}

// expenseRows is the number of list rows that fit under the chrome.
func (a App) expenseRows() int {
	return max(a.height-2-6, 3)
}

func newExpenseForm(v *expenseValues, categories []model.BudgetCategory) *huh.Form {
	opts := make([]huh.Option[string], 0, len(categories))
	for _, c := range categories {
		opts = append(opts, huh.NewOption(c.Name, c.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				Options(opts...).
				Value(&v.category),
			huh.NewInput().
				Title("Amount").
				Placeholder("42.50").
				Value(&v.amount).
				Validate(func(s string) error {
					d, err := session.ParseAmount(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if !d.IsPositive() {
						return fmt.Errorf("amount must be greater than zero")
					}
					return nil
				}),
			huh.NewInput().
				Title("Date").
				Placeholder(model.DateLayout).
				Value(&v.date).
				Validate(func(s string) error {
					if _, err := time.Parse(model.DateLayout, strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Notes").
				Placeholder("optional").
				Value(&v.notes),
		),
	).WithShowHelp(true)
}

func (a *App) expensesKey(key string) (bool, tea.Cmd) {
	n := len(a.state.Expenses)
	switch key {
	case "j", "down":
		a.expenses.move(1, n)
	case "k", "up":
		a.expenses.move(-1, n)
	case "g":
		a.expenses.cursor = 0
	case "G":
		a.expenses.cursor = max(n-1, 0)
	case "a":
		if len(a.state.Categories) == 0 {
			a.setFlash("No budget categories: set an allocation first", true)
			return true, nil
		}
		a.expenses.vals = &expenseValues{
			category: a.state.Categories[0].Name,
			date:     a.sess.Now().Format(model.DateLayout),
		}
		a.expenses.form = newExpenseForm(a.expenses.vals, a.state.Categories).WithWidth(min(a.width, 72))
		return true, a.expenses.form.Init()
	default:
		return false, nil
	}
	a.expenses.follow(a.expenseRows(), n)
	return true, nil
}

func (a App) updateExpenseForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.expenses.form = nil
		a.setFlash("Cancelled", false)
		return a, nil
	}

	form, cmd := a.expenses.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.expenses.form = f
	}

	switch a.expenses.form.State {
	case huh.StateCompleted:
		a.expenses.form = nil
		a.submitExpense()
		return a, nil
	case huh.StateAborted:
		a.expenses.form = nil
		return a, nil
	}
	return a, cmd
}

func (a *App) submitExpense() {
	v := a.expenses.vals
	amount, err := decimal.NewFromString(strings.TrimSpace(v.amount))
	if err != nil {
		a.setFlash("invalid amount", true)
		return
	}
	ok := a.apply(budget.AddExpense{Expense: model.Expense{
		Category: v.category,
		Amount:   amount,
		Date:     strings.TrimSpace(v.date),
		Notes:    strings.TrimSpace(v.notes),
	}}, fmt.Sprintf("Added %s to %s", cli.FormatMoney(amount), v.category))
	if ok {
		a.expenses.cursor = 0
		a.expenses.offset = 0
	}
}

func (a App) renderExpensesTab(cw, h int) string {
	t := theme.Active
	es := a.expenses

	if es.form != nil {
		return components.ContentCard("Add Expense  [esc] cancel", es.form.View(), cw)
	}

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(a.state.Expenses) == 0 {
		return components.ContentCard("Expenses",
			mutedStyle.Render("No expenses yet. Press [a] to add one."), cw)
	}

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	moneyStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	catW, amtW, dateW := 16, 12, 10
	notesW := max(innerW-catW-amtW-dateW-6, 8)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s  %-*s  %*s  %s", dateW, "Date", catW, "Category", amtW, "Amount", "Notes")))
	body.WriteString("\n")

	visible := max(h-6, 3) // card border (2) + title (1) + header (1) + footer (2)
	start, end := listWindow(es.cursor, es.offset, len(a.state.Expenses), visible)
	for i := start; i < end; i++ {
		e := a.state.Expenses[i]
		line := fmt.Sprintf("%-*s  %-*s  %*s  %s",
			dateW, e.Date,
			catW, cli.Truncate(e.Category, catW),
			amtW, cli.FormatMoney(e.Amount),
			cli.Truncate(e.Notes, notesW))
		if i == es.cursor {
			line += strings.Repeat(" ", max(innerW-lipgloss.Width(line), 0))
			body.WriteString(selectedStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		body.WriteString("\n")
	}

	total := budget.TotalSpent(a.state.Expenses)
	body.WriteString(mutedStyle.Render(fmt.Sprintf("%d expenses  total ", len(a.state.Expenses))))
	body.WriteString(moneyStyle.Render(cli.FormatMoney(total)))
	body.WriteString(mutedStyle.Render("   [a] add  [j/k] move"))

	title := fmt.Sprintf("Expenses (%d-%d of %d)", start+1, end, len(a.state.Expenses))
	return components.ContentCard(title, body.String(), cw)
}

package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// allocState holds the allocation editor. draft is edited in place and only
// reaches the store on save.
type allocState struct {
	cursor int
	draft  []model.BudgetCategory
	dirty  bool
}

func (s *allocState) reset(categories []model.BudgetCategory) {
	s.draft = slices.Clone(categories)
	s.dirty = false
	s.move(0)
}

func (s *allocState) move(delta int) {
	s.cursor = min(max(s.cursor+delta, 0), max(len(s.draft)-1, 0))
}

func (s *allocState) adjust(delta int) {
	if len(s.draft) == 0 {
		return
	}
	c := &s.draft[s.cursor]
	next := min(max(c.Percentage+delta, 0), 100)
	if next != c.Percentage {
		c.Percentage = next
		s.dirty = true
	}
}

func (a *App) allocKey(key string) bool {
	switch key {
	case "j", "down":
		a.alloc.move(1)
	case "k", "up":
		a.alloc.move(-1)
	case "+", "=":
		a.alloc.adjust(1)
	case "-", "_":
		a.alloc.adjust(-1)
	case "]":
		a.alloc.adjust(5)
	case "[":
		a.alloc.adjust(-5)
	case "enter":
		if !a.alloc.dirty {
			return true
		}
		if a.apply(budget.SaveAllocation{Categories: a.alloc.draft}, "Allocation saved") {
			a.alloc.reset(a.state.Categories)
		}
	case "D":
		if a.apply(budget.ResetAllocation{}, "Allocation reset to defaults") {
			a.alloc.reset(a.state.Categories)
		}
	case "esc":
		if a.alloc.dirty {
			a.alloc.reset(a.state.Categories)
			a.setFlash("Changes discarded", false)
		}
	default:
		return false
	}
	return true
}

func (a App) renderBudgetTab(cw int) string {
	t := theme.Active
	as := a.alloc

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	okStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)
	badStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)

	innerW := components.CardInnerWidth(cw)
	preview := budget.ComputeAmounts(as.draft, a.state.Income)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("  %-16s %5s %12s %12s %12s", "Category", "%", "Allocated", "Spent", "Remaining")))
	body.WriteString("\n")
	for i, c := range preview {
		spent := c.Spent
		if j := a.state.CategoryByName(c.Name); j >= 0 {
			spent = a.state.Categories[j].Spent
		}
		marker := "  "
		if i == as.cursor {
			marker = "▸ "
		}
		line := fmt.Sprintf("%s%-16s %4d%% %12s %12s %12s", marker,
			cli.Truncate(c.Name, 16), c.Percentage,
			cli.FormatMoney(c.Allocated), cli.FormatMoney(spent), cli.FormatMoney(c.Allocated.Sub(spent)))
		if i == as.cursor {
			line += strings.Repeat(" ", max(innerW-lipgloss.Width(line), 0))
			body.WriteString(selectedStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		body.WriteString("\n")
	}

	body.WriteString("\n")
	ok, total := budget.ValidateTotal(as.draft)
	if ok {
		body.WriteString(okStyle.Render(fmt.Sprintf("Total %d%%", total)))
	} else {
		body.WriteString(badStyle.Render(fmt.Sprintf("Total %d%%: must equal 100%% to save", total)))
	}
	if as.dirty {
		body.WriteString(mutedStyle.Render("   (unsaved changes)"))
	}
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render("[+/-] ±1%  [ ] ] ±5%  [Enter] save  [Esc] discard  [D] defaults"))

	var b strings.Builder
	b.WriteString(components.ContentCard(fmt.Sprintf("Budget Allocation (income %s)", cli.FormatMoney(a.state.Income)), body.String(), cw))
	b.WriteString("\n")
	b.WriteString(a.renderSavingsCard(cw))
	return b.String()
}

func (a App) renderSavingsCard(cw int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	g := a.state.Savings
	var body strings.Builder
	body.WriteString(labelStyle.Render("Target:   ") + valueStyle.Render(cli.FormatMoney(g.Target)) + "\n")
	body.WriteString(labelStyle.Render("Saved:    ") + valueStyle.Render(cli.FormatMoney(g.Progress)) + "\n")
	if g.Target.IsPositive() {
		pct, _ := g.PercentComplete().Shift(-2).Float64()
		body.WriteString(components.ProgressBar(pct, min(components.CardInnerWidth(cw)-8, 40)))
	} else {
		body.WriteString(labelStyle.Render("No savings goal yet. Set one in Settings or save an allocation with a Savings category."))
	}
	return components.ContentCard("Savings Goal", body.String(), cw)
}

// Package view renders summaries and expense lists for the terminal.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gastos/internal/app"
	"gastos/internal/core"
	"gastos/internal/goals"
	"gastos/internal/report"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#585b70")).Padding(0, 1)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	surplusBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true)
	deficitBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

// Badge is the amount shown on a goal card: "- R$ x" over budget,
// "R$ x" otherwise.
func Badge(c goals.Comparison) string {
	if c.Exceeded() {
		return "- " + core.FormatMoney(c.Magnitude())
	}
	return core.FormatMoney(c.Magnitude())
}

// GoalCard renders one category card.
func GoalCard(c app.Card, l report.Labels) string {
	badge := surplusBadge
	if c.Comparison.Exceeded() {
		badge = deficitBadge
	}
	detail := fmt.Sprintf("%s: %s | %s: %s",
		l.Subtotal, core.FormatMoney(c.Spent),
		l.Goal, core.FormatMoney(c.Goal))
	body := lipgloss.JoinVertical(lipgloss.Left,
		nameStyle.Render(c.Category)+"  "+badge.Render(Badge(c.Comparison)),
		mutedStyle.Render(detail),
	)
	return cardStyle.Render(body)
}

// Summary renders the month header, one card per category and the totals.
func Summary(s app.Summary, l report.Labels) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(l.PeriodLabel(s.Period)))
	b.WriteString("\n")
	for _, c := range s.Cards {
		b.WriteString(GoalCard(c, l))
		b.WriteString("\n")
	}
	b.WriteString(nameStyle.Render(l.TotalLine(core.FormatMoney(s.Total))))
	b.WriteString("\n")
	b.WriteString(l.OverallLine(s.Overall))
	b.WriteString("\n")
	return b.String()
}

// ExpenseList renders the expense cards of a month, or empty when there
// are none.
func ExpenseList(cards []app.ExpenseCard, empty string) string {
	if len(cards) == 0 {
		return mutedStyle.Render(empty) + "\n"
	}
	var b strings.Builder
	for _, e := range cards {
		head := fmt.Sprintf("%s  %s", nameStyle.Render(e.Title), core.FormatMoney(e.Amount))
		lines := []string{head, mutedStyle.Render(e.Date + "  #" + e.ID)}
		if e.Description != "" && e.Description != e.Title {
			lines = append(lines, e.Description)
		}
		b.WriteString(cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
		b.WriteString("\n")
	}
	return b.String()
}

// Categories renders the category list, marking the selected one.
func Categories(categories []string, selected string) string {
	var b strings.Builder
	for _, c := range categories {
		prefix := "  "
		if c == selected {
			prefix = titleStyle.Render("> ")
		}
		b.WriteString(prefix + c + "\n")
	}
	return b.String()
}

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/aggregate"
	"gastos/internal/core"
	"gastos/internal/goals"
)

// Input is the plain data a report is built from.
type Input struct {
	Period       core.Period
	Categories   []string
	Expenses     []core.Expense
	Goals        core.Goals
	Notes        string
	IncludeEmpty bool
}

// Row is one table line of a category section.
type Row struct {
	Date        string
	Description string
	Amount      string
	Value       decimal.Decimal
}

// Section is the block of one category.
type Section struct {
	Category     string
	Rows         []Row
	Comparison   goals.Comparison
	SubtotalLine string
}

// Report is the fully computed, language-resolved content of a month report.
// Renderers only lay it out.
type Report struct {
	Title       string
	PeriodLabel string
	Period      core.Period
	Headers     [3]string
	NoExpenses  string
	Sections    []Section
	Overall     goals.Comparison
	TotalLine   string
	OverallLine string
	NotesTitle  string
	Notes       string
	Footer      string
	GeneratedAt time.Time
}

// Build aggregates the input and resolves every label. It never mutates in.
func Build(in Input, l Labels, now time.Time) Report {
	groups := aggregate.Itemize(in.Expenses, in.Period, in.Categories, in.IncludeEmpty)
	totals := aggregate.Totals(in.Expenses, in.Period, in.Categories)
	overall := goals.Overall(totals, in.Goals)

	r := Report{
		Title:       l.Title,
		PeriodLabel: l.PeriodLabel(in.Period),
		Period:      in.Period,
		Headers:     [3]string{l.Date, l.Description, l.Amount},
		NoExpenses:  l.NoExpenses,
		Overall:     overall,
		TotalLine:   l.TotalLine(core.FormatMoney(overall.Spent)),
		OverallLine: l.OverallLine(overall),
		NotesTitle:  l.Notes + ":",
		Notes:       strings.TrimSpace(in.Notes),
		Footer:      fmt.Sprintf(l.GeneratedAt, core.Timestamp(now)),
		GeneratedAt: now,
	}

	for _, cat := range aggregate.SortedNames(groups) {
		items := groups[cat]
		rows := make([]Row, 0, len(items))
		for _, it := range items {
			rows = append(rows, Row{
				Date:        it.Date,
				Description: it.Description,
				Amount:      core.FormatMoney(it.Amount),
				Value:       it.Amount,
			})
		}
		cmp := goals.Compare(in.Goals.Goal(cat), totals[cat])
		r.Sections = append(r.Sections, Section{
			Category:     cat,
			Rows:         rows,
			Comparison:   cmp,
			SubtotalLine: l.SubtotalLine(cmp),
		})
	}
	return r
}

// HasNotes reports whether the notes section is rendered.
func (r Report) HasNotes() bool {
	return r.Notes != ""
}

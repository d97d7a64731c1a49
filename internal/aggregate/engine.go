// Package aggregate groups and sums expenses by calendar month and category.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// Item is one expense line of an itemized category.
type Item struct {
	Date        string // DD/MM/YYYY
	RawDate     core.Date
	Amount      decimal.Decimal
	Description string
}

// inPeriod parses the expense date and reports whether it belongs to p.
// Malformed dates never match any period.
func inPeriod(e core.Expense, p core.Period) (core.Date, bool) {
	d, err := core.ParseDate(e.Date)
	if err != nil {
		return core.Date{}, false
	}
	return d, p.Contains(d)
}

// Totals sums the amounts of the period's expenses per category. Every name
// in categories is present (zero when nothing matched); categories found
// only on expenses are inserted as they are met.
func Totals(expenses []core.Expense, p core.Period, categories []string) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(categories))
	for _, c := range categories {
		totals[c] = decimal.Zero
	}
	for _, e := range expenses {
		if _, ok := inPeriod(e, p); !ok {
			continue
		}
		cat := e.BucketCategory()
		totals[cat] = totals[cat].Add(e.Amount)
	}
	return totals
}

// Itemize lists the period's expenses per category in expense-list order.
// With includeEmpty false, categories without items are dropped.
func Itemize(expenses []core.Expense, p core.Period, categories []string, includeEmpty bool) map[string][]Item {
	groups := make(map[string][]Item, len(categories))
	for _, c := range categories {
		groups[c] = nil
	}
	for _, e := range expenses {
		d, ok := inPeriod(e, p)
		if !ok {
			continue
		}
		cat := e.BucketCategory()
		groups[cat] = append(groups[cat], Item{
			Date:        d.Display(),
			RawDate:     d,
			Amount:      e.Amount,
			Description: e.Description,
		})
	}
	if !includeEmpty {
		for k, items := range groups {
			if len(items) == 0 {
				delete(groups, k)
			}
		}
	}
	return groups
}

// Sum adds every value of a totals map.
func Sum(totals map[string]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range totals {
		sum = sum.Add(v)
	}
	return sum
}

// SortedNames returns the keys of m in ascending order.
func SortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Overview builds the month overview: one entry per category list name
// followed by the names that only appear on expenses, in ascending order.
func Overview(expenses []core.Expense, p core.Period, categories []string, goals core.Goals) core.MonthOverview {
	totals := Totals(expenses, p, categories)
	ov := core.MonthOverview{Period: p, Total: decimal.Zero, GoalTotal: decimal.Zero}

	seen := make(map[string]struct{}, len(categories))
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		spent, goal := totals[name], goals.Goal(name)
		ov.ByCategory = append(ov.ByCategory, core.CategoryAmount{Name: name, Spent: spent, Goal: goal})
		ov.Total = ov.Total.Add(spent)
		ov.GoalTotal = ov.GoalTotal.Add(goal)
	}
	for _, c := range categories {
		add(c)
	}
	for _, name := range SortedNames(totals) {
		add(name)
	}
	return ov
}

package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name, next to
// the goal configured for that category.
type CategoryAmount struct {
	Name  string
	Spent decimal.Decimal
	Goal  decimal.Decimal
}

// MonthOverview is a compact summary for one period.
type MonthOverview struct {
	Period     Period
	Total      decimal.Decimal
	GoalTotal  decimal.Decimal
	ByCategory []CategoryAmount
}

// Remaining is goal minus spent for the whole month.
func (m MonthOverview) Remaining() decimal.Decimal {
	return m.GoalTotal.Sub(m.Total)
}

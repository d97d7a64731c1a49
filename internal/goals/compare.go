// Package goals compares monthly spending against per-category goals and
// applies goal edits.
package goals

import (
	"github.com/shopspring/decimal"
)

// Status classifies a comparison.
type Status int

const (
	// Surplus means spending stayed within the goal (remaining >= 0).
	Surplus Status = iota
	// Deficit means the goal was exceeded (remaining < 0).
	Deficit
)

func (s Status) String() string {
	if s == Deficit {
		return "deficit"
	}
	return "surplus"
}

// Comparison is goal vs spent for one category or for the whole month.
type Comparison struct {
	Goal      decimal.Decimal
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	Status    Status
}

// Compare computes remaining = goal - spent.
func Compare(goal, spent decimal.Decimal) Comparison {
	remaining := goal.Sub(spent)
	status := Surplus
	if remaining.IsNegative() {
		status = Deficit
	}
	return Comparison{Goal: goal, Spent: spent, Remaining: remaining, Status: status}
}

// Overall compares the sum of all totals with the sum of the goals of the
// same categories.
func Overall(totals map[string]decimal.Decimal, goals map[string]decimal.Decimal) Comparison {
	spent, goal := decimal.Zero, decimal.Zero
	for cat, v := range totals {
		spent = spent.Add(v)
		goal = goal.Add(goals[cat])
	}
	return Compare(goal, spent)
}

// Magnitude is the absolute remaining value shown next to the status.
func (c Comparison) Magnitude() decimal.Decimal {
	return c.Remaining.Abs()
}

// Exceeded reports whether the goal was exceeded.
func (c Comparison) Exceeded() bool {
	return c.Status == Deficit
}

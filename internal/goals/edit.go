package goals

import (
	"strings"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// ParseInput turns a goal field into a non-negative amount. Anything that is
// not a number, and any negative number, becomes zero.
func ParseInput(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Set stores a single category goal and returns the updated copy.
func Set(current core.Goals, category, raw string) core.Goals {
	next := current.Clone()
	next[category] = ParseInput(raw)
	return next
}

// Apply parses every submitted field and returns the updated copy. Goals of
// categories that were not submitted are kept; the caller swaps the whole
// map in one assignment, so a bulk edit is never half applied.
func Apply(current core.Goals, fields map[string]string) core.Goals {
	next := current.Clone()
	for cat, raw := range fields {
		next[cat] = ParseInput(raw)
	}
	return next
}

// Current returns the pre-filled value for an edit surface.
func Current(current core.Goals, category string) decimal.Decimal {
	return current.Goal(category)
}

// Fields returns one pre-filled value per category for the bulk edit surface.
func Fields(current core.Goals, categories []string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(categories))
	for _, c := range categories {
		out[c] = current.Goal(c)
	}
	return out
}

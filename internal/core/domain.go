package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCategory receives expenses whose category is empty.
const DefaultCategory = "Outros"

// DefaultCategories seeds the category list when nothing usable is stored.
var DefaultCategories = []string{
	"Alimentação",
	"Gastos Fixos",
	"Lazer",
	"Gatos",
	"Limpeza",
	"Higiene pessoal",
	"Reforma",
}

type (
	// Expense is the canonical expense record. Date keeps the persisted
	// YYYY-MM-DD text so malformed values survive a load/save round trip.
	Expense struct {
		ID          string
		Date        string
		Category    string
		Description string
		Amount      decimal.Decimal
	}

	// Goals maps a category name to its monthly ceiling. Missing means zero.
	Goals map[string]decimal.Decimal
)

var (
	ErrMissingDate     = errors.New("missing date")
	ErrMissingCategory = errors.New("missing category")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyCategory   = errors.New("empty category name")
	ErrExpenseNotFound = errors.New("expense not found")
)

// BucketCategory returns the category the expense is aggregated under.
func (e Expense) BucketCategory() string {
	if strings.TrimSpace(e.Category) == "" {
		return DefaultCategory
	}
	return e.Category
}

// Validate checks the fields a form submit must carry.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Date) == "" {
		return ErrMissingDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrMissingCategory
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Title is the card heading: category, then description, then a generic label.
func (e Expense) Title() string {
	switch {
	case e.Category != "":
		return e.Category
	case e.Description != "":
		return e.Description
	default:
		return "Gasto"
	}
}

// Goal returns the goal for a category, zero when unset.
func (g Goals) Goal(category string) decimal.Decimal {
	if v, ok := g[category]; ok {
		return v
	}
	return decimal.Zero
}

// Clone returns an independent copy.
func (g Goals) Clone() Goals {
	out := make(Goals, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// FindCategory looks a name up case-insensitively and returns the stored spelling.
func FindCategory(categories []string, name string) (string, bool) {
	for _, c := range categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

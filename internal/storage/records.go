package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// expenseRecord is the canonical on-disk shape of an expense.
type expenseRecord struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
}

// Aliases accepted at load, canonical key first.
var (
	idKeys          = []string{"id"}
	dateKeys        = []string{"date", "data"}
	categoryKeys    = []string{"category", "categoria"}
	descriptionKeys = []string{"description", "descricao", "nota", "obs"}
	amountKeys      = []string{"amount", "valor"}
)

func decodeNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// decodeCategories parses a JSON string array, dropping blanks and duplicates.
// changed reports whether the cleaned list differs from the stored one.
func decodeCategories(raw []byte) (names []string, changed bool, err error) {
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false, err
	}
	names = dedupe(toStrings(list))
	if len(names) != len(list) {
		return names, true, nil
	}
	for i, v := range list {
		if v != names[i] {
			return names, true, nil
		}
	}
	return names, false, nil
}

func toStrings(list []any) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func encodeCategories(cats []string) ([]byte, error) {
	if cats == nil {
		cats = []string{}
	}
	return json.Marshal(cats)
}

// decodeExpenses parses a JSON array of expense objects. Legacy keys are
// mapped to canonical fields; changed reports whether any record needed it.
func decodeExpenses(raw []byte) (out []core.Expense, changed bool, err error) {
	var list []map[string]any
	if err := decodeNumbers(raw, &list); err != nil {
		return nil, false, err
	}
	out = make([]core.Expense, 0, len(list))
	for _, m := range list {
		if m == nil {
			changed = true
			continue
		}
		e, normalized := normalizeExpense(m)
		changed = changed || normalized
		out = append(out, e)
	}
	return out, changed, nil
}

func normalizeExpense(m map[string]any) (core.Expense, bool) {
	changed := false
	field := func(keys []string) any {
		for i, k := range keys {
			if v, ok := m[k]; ok && v != nil {
				if i > 0 {
					changed = true
				}
				return v
			}
		}
		return nil
	}

	e := core.Expense{
		ID:          stringValue(field(idKeys)),
		Date:        stringValue(field(dateKeys)),
		Category:    stringValue(field(categoryKeys)),
		Description: stringValue(field(descriptionKeys)),
	}
	amount, canonical := amountValue(field(amountKeys))
	e.Amount = amount
	if !canonical {
		changed = true
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
		changed = true
	}
	return e, changed
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// amountValue accepts a JSON number or a numeric string; anything else,
// including a negative value, is 0. The second result is false when the
// stored value was not a plain non-negative number.
func amountValue(v any) (decimal.Decimal, bool) {
	var (
		d   decimal.Decimal
		err error
	)
	canonical := false
	switch t := v.(type) {
	case json.Number:
		d, err = decimal.NewFromString(t.String())
		canonical = true
	case string:
		d, err = decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(t), ",", "."))
	default:
		return decimal.Zero, false
	}
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, canonical
}

func encodeExpenses(list []core.Expense) ([]byte, error) {
	recs := make([]expenseRecord, 0, len(list))
	for _, e := range list {
		recs = append(recs, expenseRecord{
			ID:          e.ID,
			Date:        e.Date,
			Category:    e.Category,
			Description: e.Description,
			Amount:      json.Number(e.Amount.String()),
		})
	}
	return json.Marshal(recs)
}

// decodeGoals parses a JSON object of category to amount. Values that are
// not non-negative numbers become zero and set changed.
func decodeGoals(raw []byte) (out core.Goals, changed bool, err error) {
	var m map[string]any
	if err := decodeNumbers(raw, &m); err != nil {
		return nil, false, err
	}
	if m == nil {
		return nil, false, fmt.Errorf("goals must be an object")
	}
	out = make(core.Goals, len(m))
	for k, v := range m {
		d, canonical := amountValue(v)
		changed = changed || !canonical
		out[k] = d
	}
	return out, changed, nil
}

func encodeGoals(g core.Goals) ([]byte, error) {
	m := make(map[string]json.Number, len(g))
	for k, v := range g {
		m[k] = json.Number(v.String())
	}
	return json.Marshal(m)
}

// dedupe trims and drops blank and repeated entries, preserving order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

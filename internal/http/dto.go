package http

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"gastos/internal/app"
	"gastos/internal/core"
	"gastos/internal/goals"
	"gastos/internal/view"
)

// formValue accepts a JSON string or number, keeping the raw text so the
// domain parsers see exactly what the user typed.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = formValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = formValue(n.String())
	return nil
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

type expenseRequest struct {
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      formValue `json:"amount"`
}

func (req expenseRequest) action(id string) app.SaveExpense {
	return app.SaveExpense{
		ID:          id,
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
		Amount:      string(req.Amount),
	}
}

type expenseJSON struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Date:        e.Date,
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
	}
}

type expenseCardJSON struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Display     string          `json:"display"`
}

type goalRequest struct {
	Value formValue `json:"value"`
}

type periodJSON struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}

type comparisonJSON struct {
	Goal      decimal.Decimal `json:"goal"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    string          `json:"status"`
	Badge     string          `json:"badge"`
}

func toComparisonJSON(c goals.Comparison) comparisonJSON {
	return comparisonJSON{
		Goal:      c.Goal,
		Spent:     c.Spent,
		Remaining: c.Remaining,
		Status:    c.Status.String(),
		Badge:     view.Badge(c),
	}
}

type cardJSON struct {
	Category string `json:"category"`
	comparisonJSON
}

type summaryJSON struct {
	Period   periodJSON        `json:"period"`
	Revision int64             `json:"revision"`
	Cards    []cardJSON        `json:"cards"`
	Expenses []expenseCardJSON `json:"expenses"`
	Total    decimal.Decimal   `json:"total"`
	Overall  comparisonJSON    `json:"overall"`
}

func toExpenseCards(cards []app.ExpenseCard) []expenseCardJSON {
	out := make([]expenseCardJSON, 0, len(cards))
	for _, e := range cards {
		out = append(out, expenseCardJSON{
			ID:          e.ID,
			Title:       e.Title,
			Date:        e.Date,
			Category:    e.Category,
			Description: e.Description,
			Amount:      e.Amount,
			Display:     core.FormatMoney(e.Amount),
		})
	}
	return out
}

func (s *Server) toSummaryJSON(sum app.Summary) summaryJSON {
	out := summaryJSON{
		Period:   periodJSON{Year: sum.Period.Year, Month: sum.Period.Month, Label: s.labels.PeriodLabel(sum.Period)},
		Revision: sum.Revision,
		Cards:    make([]cardJSON, 0, len(sum.Cards)),
		Expenses: toExpenseCards(sum.Expenses),
		Total:    sum.Total,
		Overall:  toComparisonJSON(sum.Overall),
	}
	for _, c := range sum.Cards {
		out.Cards = append(out.Cards, cardJSON{Category: c.Category, comparisonJSON: toComparisonJSON(c.Comparison)})
	}
	return out
}

type reportRequest struct {
	Year         *int   `json:"year"`
	Month        *int   `json:"month"`
	Notes        string `json:"notes"`
	IncludeEmpty bool   `json:"include_empty"`
	Format       string `json:"format"`
}

package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gastos/internal/core"
	"gastos/internal/goals"
)

// Labels holds every piece of report text that depends on the language.
type Labels struct {
	Tag         language.Tag
	Title       string
	Months      [12]string
	Date        string
	Description string
	Amount      string
	NoExpenses  string
	Subtotal    string
	Goal        string
	DeficitFmt  string
	SurplusFmt  string
	MonthTotal  string
	GoalsTotal  string
	Notes       string
	GeneratedAt string
}

var English = Labels{
	Tag:   language.English,
	Title: "Monthly Expense Report",
	Months: [12]string{"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december"},
	Date:        "Date",
	Description: "Description",
	Amount:      "Amount",
	NoExpenses:  "no expenses this month",
	Subtotal:    "Subtotal",
	Goal:        "Goal",
	DeficitFmt:  "Deficit: exceeded by %s",
	SurplusFmt:  "Surplus: %s remaining",
	MonthTotal:  "Total for the month",
	GoalsTotal:  "Goals total",
	Notes:       "Notes",
	GeneratedAt: "Generated on %s",
}

var Portuguese = Labels{
	Tag:   language.BrazilianPortuguese,
	Title: "Relatório de Gastos Mensais",
	Months: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	Date:        "Data",
	Description: "Descrição",
	Amount:      "Valor",
	NoExpenses:  "Sem gastos neste mês",
	Subtotal:    "Subtotal",
	Goal:        "Meta",
	DeficitFmt:  "Déficit: estourou %s",
	SurplusFmt:  "Superávit: faltam %s",
	MonthTotal:  "Total do mês",
	GoalsTotal:  "Soma metas",
	Notes:       "Observações",
	GeneratedAt: "Gerado em %s",
}

// LabelsFor returns the label set for a language code ("en", "pt-BR").
// Unknown codes fall back to Portuguese.
func LabelsFor(code string) Labels {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en", "en-us", "en-gb", "english":
		return English
	default:
		return Portuguese
	}
}

// PeriodLabel is the capitalized month name followed by the year.
func (l Labels) PeriodLabel(p core.Period) string {
	name := ""
	if p.Valid() {
		name = cases.Title(l.Tag).String(l.Months[p.Month])
	}
	return fmt.Sprintf("%s %d", name, p.Year)
}

// Status renders the deficit/surplus phrase of a comparison.
func (l Labels) Status(c goals.Comparison) string {
	if c.Exceeded() {
		return fmt.Sprintf(l.DeficitFmt, core.FormatMoney(c.Magnitude()))
	}
	return fmt.Sprintf(l.SurplusFmt, core.FormatMoney(c.Magnitude()))
}

// SubtotalLine is "Subtotal: x | Goal: y | status".
func (l Labels) SubtotalLine(c goals.Comparison) string {
	return fmt.Sprintf("%s: %s | %s: %s | %s",
		l.Subtotal, core.FormatMoney(c.Spent),
		l.Goal, core.FormatMoney(c.Goal),
		l.Status(c))
}

// TotalLine is the bold grand total line.
func (l Labels) TotalLine(total string) string {
	return fmt.Sprintf("%s: %s", l.MonthTotal, total)
}

// OverallLine compares the sum of goals with the sum of totals.
func (l Labels) OverallLine(c goals.Comparison) string {
	return fmt.Sprintf("%s: %s | %s", l.GoalsTotal, core.FormatMoney(c.Goal), l.Status(c))
}

package http

import (
	"html/template"
	"net/http"

	"gastos/internal/app"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/report"
	"gastos/internal/view"
)

var templateFuncs = template.FuncMap{
	"money": core.FormatMoney,
	"badge": view.Badge,
}

type pageData struct {
	Labels      report.Labels
	PeriodLabel string
	Prev        core.Period
	Next        core.Period
	Summary     app.Summary
	TotalLine   string
	OverallLine string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	p, err := parsePeriod(r, s.ctrl.State().Period)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	sum := s.summary(p)
	data := pageData{
		Labels:      s.labels,
		PeriodLabel: s.labels.PeriodLabel(p),
		Prev:        p.Prev(),
		Next:        p.Next(),
		Summary:     sum,
		TotalLine:   s.labels.TotalLine(core.FormatMoney(sum.Total)),
		OverallLine: s.labels.OverallLine(sum.Overall),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "summary.html", data); err != nil {
		logger.ErrorContext(r.Context(), "Summary template execution failed",
			applog.FieldError, err, "template", "summary.html")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

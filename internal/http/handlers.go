package http

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gastos/internal/app"
	"gastos/internal/cache"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/report"
)

// summary returns the summary of p for the current revision, computing it
// at most once per revision.
func (s *Server) summary(p core.Period) app.Summary {
	key := cache.SummaryKey(p, s.ctrl.Revision())
	return s.summaries.GetOrCompute(key, func() app.Summary {
		return s.ctrl.Summary(p)
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	st := s.ctrl.State()
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: st.Categories, Selected: st.Selected})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	st, err := s.ctrl.Dispatch(r.Context(), app.AddCategory{Name: req.Name})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: st.Categories, Selected: st.Selected})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r, s.ctrl.State().Period)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseCards(s.summary(p).Expenses))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	st, err := s.ctrl.Dispatch(r.Context(), req.action(""))
	if err != nil {
		fail(w, err)
		return
	}
	created := st.Expenses[len(st.Expenses)-1]
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		applog.FieldExpenseID, created.ID,
		applog.FieldCategory, created.Category,
		applog.FieldAmount, created.Amount.String())
	writeJSON(w, http.StatusCreated, toExpenseJSON(created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	st, err := s.ctrl.Dispatch(r.Context(), req.action(id))
	if err != nil {
		fail(w, err)
		return
	}
	e, _ := st.Expense(id)
	writeJSON(w, http.StatusOK, toExpenseJSON(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.ctrl.Dispatch(r.Context(), app.DeleteExpense{ID: id}); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetGoals(w http.ResponseWriter, r *http.Request) {
	var req map[string]formValue
	if err := decodeJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	values := make(map[string]string, len(req))
	for k, v := range req {
		values[k] = string(v)
	}
	st, err := s.ctrl.Dispatch(r.Context(), app.SetGoals{Values: values})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Goals)
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	category, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed category")
		return
	}
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	st, err := s.ctrl.Dispatch(r.Context(), app.SetGoal{Category: category, Value: string(req.Value)})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Goals)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r, s.ctrl.State().Period)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toSummaryJSON(s.summary(p)))
}

// handleReport renders and downloads a report. Identical concurrent
// requests share one rendering.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	opts := s.ctrl.DefaultReportOptions()
	if req.Year != nil {
		opts.Period.Year = *req.Year
	}
	if req.Month != nil {
		opts.Period.Month = *req.Month
	}
	if !opts.Period.Valid() {
		fail(w, fmt.Errorf("%w: %d-%d", app.ErrInvalidPeriod, opts.Period.Year, opts.Period.Month))
		return
	}
	format, err := report.ParseFormat(req.Format)
	if err != nil {
		fail(w, err)
		return
	}
	opts.Format = format
	opts.Notes = req.Notes
	opts.IncludeEmpty = req.IncludeEmpty

	key := fmt.Sprintf("%s|%s|%t|%d|%s", opts.Period.Key(), opts.Format, opts.IncludeEmpty, s.ctrl.Revision(), opts.Notes)
	// Shared by every waiter; outlives the first caller.
	genCtx := context.WithoutCancel(r.Context())
	v, err, shared := s.reports.Do(key, func() (any, error) {
		return s.ctrl.GenerateReport(genCtx, opts)
	})
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Report generation failed",
			applog.FieldPeriod, opts.Period.Key(),
			applog.FieldFormat, string(opts.Format),
			applog.FieldError, err)
		fail(w, err)
		return
	}
	art := v.(report.Artifact)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Report served",
		applog.FieldFilename, art.Filename,
		applog.FieldSize, len(art.Body),
		"shared", shared)

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Body)
}

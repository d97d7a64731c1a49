package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/app"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/report"
	"gastos/internal/storage"
	"gastos/internal/storage/memory"
)

type stubRenderer struct {
	body []byte
	err  error
}

// Render fails on a cancelled context, like the page loop of the real renderers.
func (r stubRenderer) Render(ctx context.Context, _ report.Report) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.body, r.err
}
func (stubRenderer) Extension() string   { return "pdf" }
func (stubRenderer) ContentType() string { return "application/pdf" }

func newTestServer(t *testing.T, renderer stubRenderer, opts Options) *Server {
	t.Helper()
	store := storage.NewStore(memory.New(), applog.Discard())
	reports := report.NewService(report.English, "relatorio").WithRenderer(report.FormatPDF, renderer)
	ctrl, err := app.NewController(context.Background(), store, reports,
		app.WithLogger(applog.Discard()),
		app.WithPeriod(core.Period{Year: 2024, Month: 2}),
	)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	opts.Logger = applog.Discard()
	opts.Labels = report.English
	srv := NewServer(":0", ctrl, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t, stubRenderer{}, Options{})

	rr := do(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/?year=2024&month=2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"March 2024", "no expenses this month", "month=1", "month=3"} {
		if !strings.Contains(body, want) {
			t.Fatalf("index body missing %q", want)
		}
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers not applied")
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent over plain HTTP")
	}

	rr = do(t, srv, http.MethodGet, "/?month=12", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid month status=%d", rr.Code)
	}
}

func findCard(t *testing.T, sum summaryJSON, category string) cardJSON {
	t.Helper()
	for _, c := range sum.Cards {
		if c.Category == category {
			return c
		}
	}
	t.Fatalf("no card for %q in %+v", category, sum.Cards)
	return cardJSON{}
}

func getSummary(t *testing.T, srv *Server) summaryJSON {
	t.Helper()
	rr := do(t, srv, http.MethodGet, "/api/summary?year=2024&month=2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d body=%s", rr.Code, rr.Body.String())
	}
	var sum summaryJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return sum
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t, stubRenderer{}, Options{})

	rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":"Food"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add category status=%d", rr.Code)
	}
	var cats categoriesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &cats); err != nil || cats.Categories[0] != "Food" || cats.Selected != "Food" {
		t.Fatalf("unexpected categories %+v (%v)", cats, err)
	}

	rr = do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2024-03-05","category":"Food","description":"market","amount":"50,5"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created expenseJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil || created.ID == "" {
		t.Fatalf("unexpected created expense %+v (%v)", created, err)
	}
	if !created.Amount.Equal(decimal.RequireFromString("50.5")) {
		t.Fatalf("amount = %s", created.Amount)
	}

	rr = do(t, srv, http.MethodPut, "/api/expenses/"+created.ID, `{"date":"2024-03-06","category":"Food","amount":60}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodPut, "/api/goals/Food", `{"value":"100"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set goal status=%d", rr.Code)
	}

	sum := getSummary(t, srv)
	food := findCard(t, sum, "Food")
	if !food.Spent.Equal(decimal.NewFromInt(60)) || !food.Remaining.Equal(decimal.NewFromInt(40)) || food.Status != "surplus" {
		t.Fatalf("unexpected food card %+v", food)
	}
	if !strings.Contains(food.Badge, "40,00") || strings.HasPrefix(food.Badge, "-") {
		t.Fatalf("unexpected badge %q", food.Badge)
	}
	if len(sum.Expenses) != 1 || sum.Expenses[0].Date != "06/03/2024" {
		t.Fatalf("unexpected expenses %+v", sum.Expenses)
	}

	rr = do(t, srv, http.MethodGet, "/api/expenses?year=2024&month=3", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("april expenses status=%d body=%s", rr.Code, rr.Body.String())
	}

	if rr := do(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", rr.Code)
	}
}

func TestBulkGoals(t *testing.T) {
	srv := newTestServer(t, stubRenderer{}, Options{})

	rr := do(t, srv, http.MethodPut, "/api/goals", `{"Lazer":"150","Casa":-5,"Mercado":"abc"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("bulk goals status=%d body=%s", rr.Code, rr.Body.String())
	}
	var got map[string]decimal.Decimal
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode goals: %v", err)
	}
	if !got["Lazer"].Equal(decimal.NewFromInt(150)) || !got["Casa"].IsZero() || !got["Mercado"].IsZero() {
		t.Fatalf("unexpected goals %v", got)
	}
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t, stubRenderer{}, Options{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{"missing date", http.MethodPost, "/api/expenses", `{"category":"Food","amount":"1"}`, http.StatusUnprocessableEntity, "missing date"},
		{"negative amount", http.MethodPost, "/api/expenses", `{"date":"2024-03-01","category":"Food","amount":"-1"}`, http.StatusUnprocessableEntity, "invalid amount"},
		{"empty category", http.MethodPost, "/api/categories", `{"name":"  "}`, http.StatusUnprocessableEntity, "empty category"},
		{"malformed body", http.MethodPost, "/api/expenses", `{`, http.StatusBadRequest, "malformed"},
		{"unknown expense", http.MethodPut, "/api/expenses/nope", `{"date":"2024-03-01","category":"Food","amount":"1"}`, http.StatusNotFound, "not found"},
		{"bad period", http.MethodGet, "/api/summary?month=x", ``, http.StatusUnprocessableEntity, "invalid period"},
		{"bad format", http.MethodPost, "/api/reports", `{"format":"docx"}`, http.StatusUnprocessableEntity, "unknown report format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.status, rr.Body.String())
			}
			var e errorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil || !strings.Contains(e.Error, tt.want) {
				t.Fatalf("error body %q does not mention %q", rr.Body.String(), tt.want)
			}
		})
	}
}

func TestSummaryCachedPerRevision(t *testing.T) {
	srv := newTestServer(t, stubRenderer{}, Options{})

	first := getSummary(t, srv)
	getSummary(t, srv)
	if hits, misses := srv.summaries.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}

	do(t, srv, http.MethodPut, "/api/goals/Lazer", `{"value":"10"}`)
	next := getSummary(t, srv)
	if next.Revision <= first.Revision {
		t.Fatalf("revision did not advance: %d -> %d", first.Revision, next.Revision)
	}
	if lazer := findCard(t, next, "Lazer"); !lazer.Goal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("stale summary served: %+v", lazer)
	}
}

func TestReportDownload(t *testing.T) {
	srv := newTestServer(t, stubRenderer{body: []byte("%PDF-stub")}, Options{})

	rr := do(t, srv, http.MethodPost, "/api/reports", `{"year":2024,"month":2,"notes":"ok"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("report status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); got != "attachment; filename=relatorio_2024_03.pdf" {
		t.Fatalf("Content-Disposition = %q", got)
	}
	if rr.Header().Get("Content-Type") != "application/pdf" || rr.Body.String() != "%PDF-stub" {
		t.Fatalf("unexpected artifact %q %q", rr.Header().Get("Content-Type"), rr.Body.String())
	}

	rr = do(t, srv, http.MethodPost, "/api/reports", `{"month":12}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid month status=%d", rr.Code)
	}
}

func TestReportSurvivesCallerCancel(t *testing.T) {
	srv := newTestServer(t, stubRenderer{body: []byte("%PDF-stub")}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(`{}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.String() != "%PDF-stub" {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReportRenderFailure(t *testing.T) {
	srv := newTestServer(t, stubRenderer{err: errors.New("font missing")}, Options{})

	rr := do(t, srv, http.MethodPost, "/api/reports", `{}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	var e errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil || !strings.Contains(e.Error, "report rendering failed") {
		t.Fatalf("unexpected error body %s", rr.Body.String())
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	srv := newTestServer(t, stubRenderer{}, Options{RequestsPerMinute: 1})

	if rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":"A"}`); rr.Code != http.StatusOK {
		t.Fatalf("first status=%d", rr.Code)
	}
	rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":"B"}`)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("second status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/categories", ""); rr.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, status=%d", rr.Code)
	}
}

// Package http serves the expense widget over HTTP: a JSON API and a
// server-rendered month summary page.
package http

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"gastos/internal/app"
	"gastos/internal/cache"
	applog "gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/report"
	appweb "gastos/web"
)

// Options tunes a Server. Zero values fall back to defaults.
type Options struct {
	Logger            *applog.Logger
	Labels            report.Labels
	CacheSize         int
	CacheTTL          time.Duration
	Cache             *cache.Manager
	RequestsPerMinute int
}

type Server struct {
	http.Server
	ctrl      *app.Controller
	templates *template.Template
	labels    report.Labels
	logger    *applog.Logger

	summaries *cache.LRUCache[app.Summary]
	reports   singleflight.Group
	limiter   *ratelimit.Limiter
	detector  *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, ctrl *app.Controller, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.NewLogger(nil)
	}
	if opts.Labels.Title == "" {
		opts.Labels = report.Portuguese
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	s := &Server{
		ctrl:      ctrl,
		labels:    opts.Labels,
		logger:    opts.Logger.WithComponent(applog.ComponentHTTP),
		summaries: cache.NewLRUCache[app.Summary](opts.CacheSize, opts.CacheTTL),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		detector:  security.NewDetector(opts.Logger),
	}
	if opts.Cache != nil {
		opts.Cache.Register(s.summaries)
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(opts.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(logger *applog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(applog.Middleware(logger))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.detector.Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.handleListCategories)
		r.Get("/expenses", s.handleListExpenses)
		r.Get("/summary", s.handleSummary)

		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware(security.ClientIP, s.onRateLimit))
			r.Post("/categories", s.handleAddCategory)
			r.Post("/expenses", s.handleCreateExpense)
			r.Put("/expenses/{id}", s.handleUpdateExpense)
			r.Delete("/expenses/{id}", s.handleDeleteExpense)
			r.Put("/goals", s.handleSetGoals)
			r.Put("/goals/{category}", s.handleSetGoal)
			r.Post("/reports", s.handleReport)
		})
	})
	return r
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, security.ClientIP(r))
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gastos/internal/core"
	applog "gastos/internal/log"
)

// DefaultPrefix is the file name prefix used when none is configured.
const DefaultPrefix = "relatorio_gastos"

// ErrRender wraps every failure of the rendering step.
var ErrRender = errors.New("report rendering failed")

// ErrUnknownFormat is returned for a format with no registered renderer.
var ErrUnknownFormat = errors.New("unknown report format")

// Format selects a renderer.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "pdf" and "xlsx" in any case; empty means PDF.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Renderer turns a report into a document artifact.
type Renderer interface {
	Render(ctx context.Context, r Report) ([]byte, error)
	Extension() string
	ContentType() string
}

// Request holds the per-generation options.
type Request struct {
	Period       core.Period
	Notes        string
	IncludeEmpty bool
	Format       Format
}

// Data is the state a report is generated from.
type Data struct {
	Categories []string
	Expenses   []core.Expense
	Goals      core.Goals
}

// Artifact is a rendered report ready to be saved or served.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Filename builds "<prefix>_<year>_<MM>.<ext>" with a one-based month.
func Filename(prefix string, p core.Period, ext string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s_%s.%s", prefix, p.FileStamp(), ext)
}

// Service builds, lays out and renders month reports.
type Service struct {
	labels    Labels
	prefix    string
	renderers map[Format]Renderer
	now       func() time.Time
	logger    *applog.Logger
}

// NewService creates a service with the PDF and XLSX renderers registered.
func NewService(labels Labels, prefix string) *Service {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Service{
		labels: labels,
		prefix: prefix,
		renderers: map[Format]Renderer{
			FormatPDF:  NewPDFRenderer(),
			FormatXLSX: NewXLSXRenderer(),
		},
		now:    time.Now,
		logger: applog.NewLogger(slog.Default()).WithComponent(applog.ComponentReport),
	}
}

// WithRenderer registers or replaces the renderer of a format.
func (s *Service) WithRenderer(f Format, r Renderer) *Service {
	s.renderers[f] = r
	return s
}

// WithClock replaces the generation timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Labels returns the label set the service renders with.
func (s *Service) Labels() Labels {
	return s.labels
}

// Build computes the report model without rendering it.
func (s *Service) Build(req Request, data Data) Report {
	return Build(Input{
		Period:       req.Period,
		Categories:   data.Categories,
		Expenses:     data.Expenses,
		Goals:        data.Goals,
		Notes:        req.Notes,
		IncludeEmpty: req.IncludeEmpty,
	}, s.labels, s.now())
}

// Generate renders the report of req.Period. A failing or panicking
// renderer yields an error wrapping ErrRender; state is never touched.
func (s *Service) Generate(ctx context.Context, req Request, data Data) (art Artifact, err error) {
	format := req.Format
	if format == "" {
		format = FormatPDF
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if !req.Period.Valid() {
		return Artifact{}, fmt.Errorf("invalid period %+v", req.Period)
	}

	start := time.Now()
	logger := s.logger.WithOperation(applog.OperationGenerate)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic: %v", ErrRender, rec)
			art = Artifact{}
		}
		if err != nil {
			logger.ErrorContext(ctx, "Report generation failed",
				applog.FieldPeriod, req.Period.Key(),
				applog.FieldFormat, string(format),
				applog.FieldError, err)
		}
	}()

	rep := s.Build(req, data)
	body, rerr := renderer.Render(ctx, rep)
	if rerr != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrRender, rerr)
	}

	art = Artifact{
		Filename:    Filename(s.prefix, req.Period, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}
	logger.InfoContext(ctx, "Report generated",
		applog.FieldPeriod, req.Period.Key(),
		applog.FieldFormat, string(format),
		applog.FieldFilename, art.Filename,
		applog.FieldSize, len(body),
		applog.FieldDuration, time.Since(start))
	return art, nil
}

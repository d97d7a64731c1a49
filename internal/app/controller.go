package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/aggregate"
	"gastos/internal/core"
	"gastos/internal/goals"
	applog "gastos/internal/log"
	"gastos/internal/notify"
	"gastos/internal/report"
	"gastos/internal/storage"
)

// EventPublisher announces that a month's figures changed.
type EventPublisher interface {
	PublishPeriodChanged(ctx context.Context, year, month int, revision int64) error
}

// Controller owns the single state handle. Dispatches run one at a time,
// each persisting its changes before the next one starts.
type Controller struct {
	mu       sync.RWMutex
	state    State
	revision int64

	store     *storage.Store
	reports   *report.Service
	notifier  notify.Notifier
	publisher EventPublisher
	logger    *applog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithPublisher(p EventPublisher) Option {
	return func(c *Controller) { c.publisher = p }
}

func WithLogger(l *applog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPeriod sets the initial period; the default is the current month.
func WithPeriod(p core.Period) Option {
	return func(c *Controller) { c.state.Period = p }
}

// NewController loads the persisted state and returns a ready controller.
func NewController(ctx context.Context, store *storage.Store, reports *report.Service, opts ...Option) (*Controller, error) {
	c := &Controller{
		state:   State{Period: core.CurrentPeriod()},
		store:   store,
		reports: reports,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = applog.NewLogger(nil)
	}
	c.logger = c.logger.WithComponent(applog.ComponentApp)
	if c.notifier == nil {
		c.notifier = notify.NewLogNotifier(c.logger)
	}

	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload replaces the in-memory state with the store contents. The period
// and the selection survive when still meaningful.
func (c *Controller) Reload(ctx context.Context) error {
	snap, err := c.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceLocked(snap)
	return nil
}

// Import loads a localStorage dump into the store and the state.
func (c *Controller) Import(ctx context.Context, raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, err := c.store.ImportSnapshot(ctx, raw)
	if err != nil {
		return err
	}
	c.replaceLocked(snap)
	c.publish(ctx, c.state.Period)
	return nil
}

func (c *Controller) replaceLocked(snap storage.Snapshot) {
	prev := c.state
	next := NewState(snap, prev.Period)
	if sel, ok := core.FindCategory(next.Categories, prev.Selected); ok {
		next.Selected = sel
	}
	c.state = next
	c.revision++
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Revision increases on every change of persisted data.
func (c *Controller) Revision() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// Dispatch applies an action. Validation and lookup failures are reported
// to the notifier as blocking messages and leave the state untouched.
func (c *Controller) Dispatch(ctx context.Context, a Action) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.logger.With(applog.FieldOperation, applog.OperationDispatch, "action", a.actionName())

	next, changes, err := Reduce(c.state, a)
	if err != nil {
		level := notify.LevelError
		if IsValidation(err) {
			level = notify.LevelWarning
		}
		logger.DebugContext(ctx, "Action rejected", applog.FieldError, err)
		c.notify(ctx, notify.Notification{Level: level, Message: err.Error(), Blocking: true})
		return c.state.Clone(), err
	}

	if err := c.persist(ctx, next, changes); err != nil {
		logger.ErrorContext(ctx, "Failed to persist action", applog.FieldError, err)
		c.notify(ctx, notify.Notification{Level: notify.LevelError, Message: err.Error()})
		return c.state.Clone(), err
	}

	c.state = next
	if changes.Persisted() {
		c.revision++
		for _, p := range changes.Periods {
			c.publish(ctx, p)
		}
	}
	logger.DebugContext(ctx, "Action applied", applog.FieldRevision, c.revision)
	return c.state.Clone(), nil
}

func (c *Controller) persist(ctx context.Context, s State, ch Changes) error {
	if ch.Categories {
		if err := c.store.SaveCategories(ctx, s.Categories); err != nil {
			return err
		}
	}
	if ch.Expenses {
		if err := c.store.SaveExpenses(ctx, s.Expenses); err != nil {
			return err
		}
	}
	if ch.Goals {
		if err := c.store.SaveGoals(ctx, s.Goals); err != nil {
			return err
		}
	}
	return nil
}

// publish is best effort: a lost event only delays the sheet mirror.
func (c *Controller) publish(ctx context.Context, p core.Period) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishPeriodChanged(ctx, p.Year, p.Month, c.revision); err != nil {
		c.logger.WarnContext(ctx, "Failed to publish period change",
			applog.FieldPeriod, p.Key(), applog.FieldError, err)
	}
}

func (c *Controller) notify(ctx context.Context, n notify.Notification) {
	if err := c.notifier.Notify(ctx, n); err != nil {
		c.logger.WarnContext(ctx, "Failed to deliver notification", applog.FieldError, err)
	}
}

// Card is one category tile of the monthly summary.
type Card struct {
	Category   string
	Spent      decimal.Decimal
	Goal       decimal.Decimal
	Comparison goals.Comparison
}

// ExpenseCard is one entry of the expense list of a month.
type ExpenseCard struct {
	ID          string
	Title       string
	Date        string
	Category    string
	Description string
	Amount      decimal.Decimal
}

// Summary is what the main screen shows for one month.
type Summary struct {
	Period   core.Period
	Revision int64
	Cards    []Card
	Expenses []ExpenseCard
	Total    decimal.Decimal
	Overall  goals.Comparison
}

// Summary computes the cards of p from the current state.
func (c *Controller) Summary(p core.Period) Summary {
	c.mu.RLock()
	s := c.state.Clone()
	rev := c.revision
	c.mu.RUnlock()
	return BuildSummary(s, p, rev)
}

// BuildSummary computes the summary of p. Cards follow the category list,
// then categories only present on expenses in ascending order.
func BuildSummary(s State, p core.Period, revision int64) Summary {
	ov := aggregate.Overview(s.Expenses, p, s.Categories, s.Goals)
	totals := aggregate.Totals(s.Expenses, p, s.Categories)

	sum := Summary{
		Period:   p,
		Revision: revision,
		Total:    ov.Total,
		Overall:  goals.Overall(totals, s.Goals),
	}
	for _, ca := range ov.ByCategory {
		sum.Cards = append(sum.Cards, Card{
			Category:   ca.Name,
			Spent:      ca.Spent,
			Goal:       ca.Goal,
			Comparison: goals.Compare(ca.Goal, ca.Spent),
		})
	}
	for _, e := range s.Expenses {
		d, err := core.ParseDate(e.Date)
		if err != nil || !p.Contains(d) {
			continue
		}
		sum.Expenses = append(sum.Expenses, ExpenseCard{
			ID:          e.ID,
			Title:       e.Title(),
			Date:        d.Display(),
			Category:    e.BucketCategory(),
			Description: e.Description,
			Amount:      e.Amount,
		})
	}
	return sum
}

// ReportOptions are the settings of the report surface.
type ReportOptions struct {
	Period       core.Period
	Notes        string
	IncludeEmpty bool
	Format       report.Format
}

// DefaultReportOptions returns the options the report surface opens with:
// the selected month, no notes, empty categories hidden.
func (c *Controller) DefaultReportOptions() ReportOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ReportOptions{Period: c.state.Period, Format: report.FormatPDF}
}

// GenerateReport renders a report from a snapshot of the state. Failures
// are reported as a single non-blocking notification.
func (c *Controller) GenerateReport(ctx context.Context, opts ReportOptions) (report.Artifact, error) {
	c.mu.RLock()
	s := c.state.Clone()
	c.mu.RUnlock()

	start := time.Now()
	art, err := c.reports.Generate(ctx, report.Request{
		Period:       opts.Period,
		Notes:        opts.Notes,
		IncludeEmpty: opts.IncludeEmpty,
		Format:       opts.Format,
	}, report.Data{
		Categories: s.Categories,
		Expenses:   s.Expenses,
		Goals:      s.Goals,
	})
	if err != nil {
		c.notify(ctx, notify.Notification{Level: notify.LevelError, Message: err.Error()})
		return report.Artifact{}, err
	}
	c.logger.DebugContext(ctx, "Report ready",
		applog.FieldFilename, art.Filename,
		applog.FieldDuration, time.Since(start))
	return art, nil
}

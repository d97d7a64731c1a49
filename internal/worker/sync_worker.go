package worker

import (
	"context"
	"fmt"
	"time"

	"gastos/internal/aggregate"
	"gastos/internal/amqp"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/sheets"
	"gastos/internal/storage"
)

// PeriodSync mirrors month overviews from the store into a spreadsheet.
type PeriodSync struct {
	store  *storage.Store
	sheets sheets.SummaryWriter
	logger *applog.Logger
}

func NewPeriodSync(store *storage.Store, writer sheets.SummaryWriter, logger *applog.Logger) *PeriodSync {
	if logger == nil {
		logger = applog.NewLogger(nil)
	}
	return &PeriodSync{
		store:  store,
		sheets: writer,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// Handle processes a single period changed message from AMQP. The store is
// reloaded on every message so that the newest state is written whatever
// revision the message carries.
func (w *PeriodSync) Handle(ctx context.Context, msg *amqp.PeriodChangedMessage) error {
	p := core.Period{Year: msg.Year, Month: msg.Month}
	if !p.Valid() {
		// Requeueing cannot fix a bad period.
		w.logger.WarnContext(ctx, "Dropping message with invalid period",
			"year", msg.Year, "month", msg.Month)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing period changed message",
		applog.FieldPeriod, p.Key(),
		applog.FieldRevision, msg.Revision)

	if err := w.SyncPeriod(ctx, p); err != nil {
		return fmt.Errorf("sync period %s: %w", p.Key(), err)
	}
	return nil
}

// SyncPeriod aggregates p from the store and writes the overview.
func (w *PeriodSync) SyncPeriod(ctx context.Context, p core.Period) error {
	start := time.Now()
	snap, err := w.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	ov := aggregate.Overview(snap.Expenses, p, snap.Categories, snap.Goals)
	if err := w.sheets.WriteMonthSummary(ctx, ov); err != nil {
		w.logger.ErrorContext(ctx, "Failed to write month summary",
			applog.FieldPeriod, p.Key(), applog.FieldError, err)
		return err
	}
	w.logger.InfoContext(ctx, "Successfully synced period",
		applog.FieldPeriod, p.Key(),
		applog.FieldDuration, time.Since(start))
	return nil
}

// StartupSync writes the current and the previous month, covering changes
// made while the worker was down.
func (w *PeriodSync) StartupSync(ctx context.Context, now time.Time) error {
	current := core.PeriodOf(now)
	for _, p := range []core.Period{current.Prev(), current} {
		if err := w.SyncPeriod(ctx, p); err != nil {
			return err
		}
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "periods", 2)
	return nil
}

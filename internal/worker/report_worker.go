package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"duitku/internal/amqp"
	"duitku/internal/services"
	"duitku/internal/sheets"
	"duitku/internal/stats"
)

// Snapshotter computes the week, month and year reports around an anchor.
type Snapshotter interface {
	Snapshot(ctx context.Context, anchor time.Time) (services.Snapshot, error)
	Invalidate()
}

// ReportWorker keeps exported reports in step with the transaction store:
// every change message re-exports the periods containing the changed
// transaction, and a periodic pass re-exports the current periods.
type ReportWorker struct {
	reports  Snapshotter
	exporter sheets.ReportExporter
	now      func() time.Time
}

func NewReportWorker(reports Snapshotter, exporter sheets.ReportExporter) *ReportWorker {
	return &ReportWorker{
		reports:  reports,
		exporter: exporter,
		now:      time.Now,
	}
}

// HandleTransactionChanged processes a single change message from AMQP. The
// periods around every anchor of the message are re-exported, so a moved
// transaction also leaves the periods it came from. A returned error makes
// the consumer requeue the message.
func (w *ReportWorker) HandleTransactionChanged(ctx context.Context, msg *amqp.TransactionChangedMessage) error {
	anchors := msg.Anchors()
	slog.InfoContext(ctx, "Processing transaction changed message",
		"transaction_id", msg.ID,
		"action", msg.Action,
		"occurred_at", msg.OccurredAt.Format(time.RFC3339),
		"anchors", len(anchors))

	// Another process wrote to the store; nothing cached here is current
	w.reports.Invalidate()

	if err := w.export(ctx, anchors...); err != nil {
		return fmt.Errorf("export reports for %s: %w", msg.ID, err)
	}
	return nil
}

// ExportCurrent re-exports the reports around the current time. It is the
// backup path for change messages that were lost.
func (w *ReportWorker) ExportCurrent(ctx context.Context) error {
	w.reports.Invalidate()
	return w.export(ctx, w.now())
}

// Run calls ExportCurrent once immediately and then on every tick until ctx
// is done. Failures are logged and retried on the next tick.
func (w *ReportWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.ExportCurrent(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(ctx, "Periodic export failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// export writes the week, month and year reports around each anchor. A
// period shared by several anchors is exported once.
func (w *ReportWorker) export(ctx context.Context, anchors ...time.Time) error {
	var reports []stats.Report
	seen := make(map[string]bool)
	for _, anchor := range anchors {
		snap, err := w.reports.Snapshot(ctx, anchor)
		if err != nil {
			return err
		}
		for _, r := range snap.Reports() {
			key := r.Period.String() + "|" + r.Range.Start.Format(time.RFC3339)
			if seen[key] {
				continue
			}
			seen[key] = true
			reports = append(reports, r)
		}
	}

	var errs []error
	for _, r := range reports {
		ref, err := w.exporter.ExportReport(ctx, r)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to export report",
				"period", r.Period,
				"range_start", r.Range.Start.Format(time.RFC3339),
				"error", err)
			errs = append(errs, fmt.Errorf("%s: %w", r.Period, err))
			continue
		}
		slog.InfoContext(ctx, "Report exported",
			"period", r.Period,
			"export_ref", ref,
			"total_expense", r.TotalExpense.String())
	}
	return errors.Join(errs...)
}

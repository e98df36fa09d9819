package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"duitku/internal/cache"
	applog "duitku/internal/log"
	"duitku/internal/stats"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Snapshot holds the three standard reports around one anchor.
type Snapshot struct {
	Anchor time.Time
	Week   stats.Report
	Month  stats.Report
	Year   stats.Report
}

// Reports returns the snapshot's reports in week, month, year order.
func (s Snapshot) Reports() []stats.Report {
	return []stats.Report{s.Week, s.Month, s.Year}
}

// ReportService fetches the transactions of a period and runs the analytics
// engine over them. Results are cached per resolved range until the next
// change event. Returned reports share slices with the cache and must be
// treated as read-only.
type ReportService struct {
	reader RangeReader
	engine *stats.Engine
	cache  *cache.LRUCache[stats.Report]
	group  singleflight.Group

	// generation is bumped on every invalidation so a computation that
	// started before a write never lands in the cache
	generation atomic.Uint64
}

// NewReportService accepts a nil cache, in which case every call recomputes.
func NewReportService(reader RangeReader, engine *stats.Engine, reports *cache.LRUCache[stats.Report]) *ReportService {
	return &ReportService{
		reader: reader,
		engine: engine,
		cache:  reports,
	}
}

func cacheKey(period stats.Period, r stats.DateRange) string {
	return period.String() + "|" + r.Start.Format(time.RFC3339)
}

// Report computes the report of period around anchor. A store failure is
// returned as is and no report is produced.
func (s *ReportService) Report(ctx context.Context, period stats.Period, anchor time.Time) (stats.Report, error) {
	if !period.IsValid() {
		return stats.Report{}, fmt.Errorf("%w: %q", stats.ErrUnknownPeriod, period)
	}

	anchor = anchor.In(s.engine.Location)
	r := s.engine.Range(period, anchor)
	key := cacheKey(period, r)

	if s.cache != nil {
		if rep, ok := s.cache.Get(key); ok {
			rep.Anchor = anchor
			return rep, nil
		}
	}

	// Calls made after an invalidation never join a computation that
	// started before it.
	gen := s.generation.Load()
	flight := key + "#" + strconv.FormatUint(gen, 10)

	v, err, shared := s.group.Do(flight, func() (any, error) {
		txs, err := s.reader.ListBetween(ctx, r.Start, r.End)
		if err != nil {
			return nil, fmt.Errorf("load transactions for %s: %w", period, err)
		}

		rep := s.engine.Compute(txs, period, anchor)
		if s.cache != nil && s.generation.Load() == gen {
			s.cache.Set(key, rep)
		}

		fields := applog.NewFields().
			WithComponent(applog.ComponentStats).
			WithOperation(applog.OpReport).
			WithReport(period.String(), r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339), len(txs), len(rep.Buckets))
		slog.DebugContext(ctx, "Report computed", fields.ToSlice()...)
		return rep, nil
	})
	if err != nil {
		return stats.Report{}, err
	}

	rep := v.(stats.Report)
	if shared {
		rep.Anchor = anchor
	}
	return rep, nil
}

// Snapshot computes the week, month and year reports concurrently.
func (s *ReportService) Snapshot(ctx context.Context, anchor time.Time) (Snapshot, error) {
	snap := Snapshot{Anchor: anchor.In(s.engine.Location)}

	g, gctx := errgroup.WithContext(ctx)
	targets := []struct {
		period stats.Period
		dst    *stats.Report
	}{
		{stats.Week, &snap.Week},
		{stats.Month, &snap.Month},
		{stats.Year, &snap.Year},
	}
	for _, tg := range targets {
		g.Go(func() error {
			rep, err := s.Report(gctx, tg.period, anchor)
			if err != nil {
				return err
			}
			*tg.dst = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("compute snapshot: %w", err)
	}
	return snap, nil
}

// Invalidate drops every cached report.
func (s *ReportService) Invalidate() {
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Watch invalidates the cache on every change event until ctx is done. It
// covers writers that do not purge the cache themselves; writes made through
// a TransactionService holding this service as an invalidator are already
// visible when they return.
func (s *ReportService) Watch(ctx context.Context, n *Notifier) {
	events, unsubscribe := n.Subscribe(16)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.Invalidate()
			slog.DebugContext(ctx, "Report cache invalidated",
				applog.FieldComponent, applog.ComponentCache,
				applog.FieldTxID, ev.TransactionID,
				"action", ev.Action)
		}
	}
}

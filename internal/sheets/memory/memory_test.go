package memory

import (
	"context"
	"testing"
	"time"

	"duitku/internal/core"
	"duitku/internal/stats"
)

func report(period stats.Period, anchor time.Time, total int64) stats.Report {
	return stats.Report{
		Period:       period,
		Range:        stats.Resolve(period, anchor),
		TotalExpense: core.NewMoney(total),
	}
}

func TestStore_ExportReplacesSameRange(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.ExportReport(ctx, report(stats.Week, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 10))
	if err != nil || ref != "mem:Week 2024-03-04" {
		t.Fatalf("unexpected export: ref=%q err=%v", ref, err)
	}
	// Same week, different anchor
	if _, err := s.ExportReport(ctx, report(stats.Week, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 20)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ExportReport(ctx, report(stats.Year, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 30)); err != nil {
		t.Fatal(err)
	}

	titles := s.Titles()
	if len(titles) != 2 || titles[0] != "Week 2024-03-04" || titles[1] != "Year 2024-01-01" {
		t.Fatalf("unexpected titles %v", titles)
	}
	got, ok := s.Get("Week 2024-03-04")
	if !ok || !got.TotalExpense.Equal(core.NewMoney(20)) {
		t.Errorf("expected the latest week export, got %+v", got)
	}
	if s.Exports() != 3 {
		t.Errorf("exports = %d, want 3", s.Exports())
	}
}

func TestStore_RejectsInvalid(t *testing.T) {
	s := New()
	if _, err := s.ExportReport(context.Background(), stats.Report{}); err == nil {
		t.Error("expected error for report without period")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ExportReport(ctx, report(stats.Week, time.Now(), 1)); err == nil {
		t.Error("expected error for cancelled context")
	}
}

package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	ports "duitku/internal/sheets"
	"duitku/internal/stats"
)

var _ ports.ReportExporter = (*Store)(nil)

// Store keeps exported reports in memory, keyed by their tab title.
type Store struct {
	mu      sync.Mutex
	reports map[string]stats.Report
	exports int
}

func New() *Store {
	return &Store{reports: make(map[string]stats.Report)}
}

// ExportReport stores r, replacing any earlier export of the same range.
func (s *Store) ExportReport(ctx context.Context, r stats.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !r.Period.IsValid() {
		return "", errors.New("report has no period")
	}

	title := ports.Title(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[title] = r
	s.exports++
	return "mem:" + title, nil
}

// Get returns the report exported under title.
func (s *Store) Get(title string) (stats.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[title]
	return r, ok
}

// Titles lists the stored report titles in sorted order.
func (s *Store) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.reports))
	for k := range s.reports {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Exports counts ExportReport calls that succeeded, overwrites included.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}

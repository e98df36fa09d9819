package sheets

import (
	"context"
	"strings"

	"duitku/internal/stats"
)

// Ports for outbound adapters.
type (
	// ReportExporter publishes a computed report somewhere a human can read
	// it. Exporting the same range twice replaces the earlier copy.
	ReportExporter interface {
		ExportReport(ctx context.Context, r stats.Report) (ref string, err error)
	}
)

// Title names the tab (or key) a report is exported under, e.g.
// "Week 2024-03-04" or "Year 2024-01-01".
func Title(r stats.Report) string {
	p := r.Period.String()
	if p != "" {
		p = strings.ToUpper(p[:1]) + p[1:]
	}
	return p + " " + r.Range.Start.Format("2006-01-02")
}

// BucketLabel formats a bucket key the way it is shown to users: a day for
// week and month reports, a month for year reports.
func BucketLabel(r stats.Report, b stats.Bucket) string {
	if r.Period == stats.Year {
		return b.Key.Format("2006-01")
	}
	return b.Key.Format("2006-01-02")
}

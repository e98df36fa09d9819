// Package stats turns a snapshot of transactions into the report shown on
// the statistics screen: totals, a category breakdown and a zero-filled time
// series with per-category segments.
//
// Everything here is a pure function of its inputs. Callers re-run Compute
// whenever the underlying transactions change.
package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"duitku/internal/core"
)

const (
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

// Period selects both the reporting range and the bucket granularity.
type Period string

var ErrUnknownPeriod = errors.New("unknown period")

// ParsePeriod accepts week, month or year in any letter case.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Week, Month, Year:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

func (p Period) IsValid() bool {
	switch p {
	case Week, Month, Year:
		return true
	}
	return false
}

func (p Period) String() string {
	return string(p)
}

// DateRange is inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range, boundaries included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Resolve maps a period and an anchor date to the calendar range it reports
// on, in the anchor's location. Weeks start on Monday.
//
// A period outside the enum resolves to the anchor's own day.
func Resolve(period Period, anchor time.Time) DateRange {
	y, m, d := anchor.Date()
	loc := anchor.Location()

	var start, next time.Time
	switch period {
	case Week:
		// Sunday is day 7 of the week, not day 0.
		back := int(anchor.Weekday()) - int(time.Monday)
		if anchor.Weekday() == time.Sunday {
			back = 6
		}
		start = time.Date(y, m, d-back, 0, 0, 0, 0, loc)
		next = time.Date(y, m, d-back+7, 0, 0, 0, 0, loc)
	case Month:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		next = time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
	case Year:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		next = time.Date(y+1, time.January, 1, 0, 0, 0, 0, loc)
	default:
		start = core.StartOfDay(anchor)
		next = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	}
	return DateRange{Start: start, End: next.Add(-time.Nanosecond)}
}

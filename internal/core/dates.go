package core

import (
	"errors"
	"strings"
	"time"
)

// looseDateLayouts are tried in order by ParseLooseDate.
var looseDateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
}

var ErrUnrecognizedDate = errors.New("unrecognized date format")

// ParseLooseDate parses the date formats that show up on receipts and in
// free text. The result is midnight in loc.
func ParseLooseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnrecognizedDate
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range looseDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnrecognizedDate
}

// StartOfDay strips the clock part of t, keeping its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

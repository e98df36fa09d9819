package stats

import (
	"time"

	"duitku/internal/core"
)

// BucketKey normalizes t to the bucket it falls in: midnight of its day for
// Week and Month, midnight of the 1st of its month for Year. t is read in loc.
func BucketKey(t time.Time, period Period, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	if period == Year {
		y, m, _ := t.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	}
	return core.StartOfDay(t)
}

// Plan lists every bucket key between r.Start and r.End, ascending. The axis
// depends only on the range and the period, never on the data, so buckets
// without activity are still present.
func Plan(r DateRange, period Period) []time.Time {
	loc := r.Start.Location()
	first := BucketKey(r.Start, period, loc)
	last := BucketKey(r.End, period, loc)

	var keys []time.Time
	y, m, d := first.Date()
	for i := 0; ; i++ {
		var k time.Time
		if period == Year {
			k = time.Date(y, m+time.Month(i), 1, 0, 0, 0, 0, loc)
		} else {
			k = time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		}
		if k.After(last) {
			break
		}
		keys = append(keys, k)
	}
	return keys
}

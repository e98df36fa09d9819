package stats

import (
	"time"

	"duitku/internal/core"
)

// Segment is one category's share of a single bucket.
type Segment struct {
	Category string
	ColorKey string
	Amount   core.Money
}

// Bucket is one slot of the time axis: a day for Week and Month, a month for
// Year. The segment amounts always add up to ExpenseTotal.
type Bucket struct {
	Key          time.Time
	ExpenseTotal core.Money
	Segments     []Segment
}

// CategoryStat is one category's share of the whole range.
type CategoryStat struct {
	Category   string
	Amount     core.Money
	Percentage float64
	ColorKey   string
}

// Report is the result of one aggregation run. Aggregate builds a fresh
// value on every call.
type Report struct {
	Period            Period
	Anchor            time.Time
	Range             DateRange
	TotalIncome       core.Money
	TotalExpense      core.Money
	Balance           core.Money
	CategoryBreakdown []CategoryStat
	Buckets           []Bucket
}

// IsEmpty reports whether nothing at all happened in the range.
func (r Report) IsEmpty() bool {
	return r.TotalIncome.IsZero() && r.TotalExpense.IsZero()
}

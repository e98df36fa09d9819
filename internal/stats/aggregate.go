package stats

import (
	"sort"
	"time"

	"duitku/internal/core"
)

// bucketAcc accumulates one bucket's expenses per category.
type bucketAcc struct {
	total      core.Money
	byCategory map[string]core.Money
}

// Aggregate computes a report over the transactions that fall inside r.
//
// Transactions outside r are ignored, so callers may pass either a
// range-filtered snapshot or a superset. Income only feeds TotalIncome; the
// breakdown and the buckets are expense-only views. Amounts are taken as-is.
func Aggregate(transactions []core.Transaction, r DateRange, period Period, palette Palette) Report {
	loc := r.Start.Location()
	keys := Plan(r, period)

	// Zero-filled before any transaction is looked at.
	buckets := make(map[int64]*bucketAcc, len(keys))
	for _, k := range keys {
		buckets[k.Unix()] = &bucketAcc{byCategory: map[string]core.Money{}}
	}

	var income, expense core.Money
	byCategory := map[string]core.Money{}

	for _, tx := range transactions {
		if !r.Contains(tx.Timestamp) {
			continue
		}
		switch tx.Kind {
		case core.Income:
			income = income.Add(tx.Amount)
		case core.Expense:
			expense = expense.Add(tx.Amount)
			byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)

			acc, ok := buckets[BucketKey(tx.Timestamp, period, loc).Unix()]
			if !ok {
				continue
			}
			acc.total = acc.total.Add(tx.Amount)
			acc.byCategory[tx.Category] = acc.byCategory[tx.Category].Add(tx.Amount)
		}
	}

	out := make([]Bucket, len(keys))
	for i, k := range keys {
		acc := buckets[k.Unix()]
		out[i] = Bucket{
			Key:          k,
			ExpenseTotal: acc.total,
			Segments:     segments(acc.byCategory, palette),
		}
	}

	return Report{
		Period:            period,
		Range:             r,
		TotalIncome:       income,
		TotalExpense:      expense,
		Balance:           income.Sub(expense),
		CategoryBreakdown: breakdown(byCategory, expense, palette),
		Buckets:           out,
	}
}

// breakdown derives the per-category shares of total. With no expense the
// divisor is 1, which leaves every percentage equal to its (zero) amount.
func breakdown(byCategory map[string]core.Money, total core.Money, palette Palette) []CategoryStat {
	divisor := total
	if divisor.IsZero() {
		divisor = core.NewMoney(1)
	}

	out := make([]CategoryStat, 0, len(byCategory))
	for cat, amt := range byCategory {
		if amt.IsZero() {
			continue
		}
		out = append(out, CategoryStat{
			Category:   cat,
			Amount:     amt,
			Percentage: amt.Ratio(divisor),
			ColorKey:   palette.Color(cat),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return byAmountDesc(out[i].Amount, out[j].Amount, out[i].Category, out[j].Category)
	})
	return out
}

// segments orders a bucket's categories largest first, the order in which a
// stacked bar is drawn from the base up.
func segments(byCategory map[string]core.Money, palette Palette) []Segment {
	out := make([]Segment, 0, len(byCategory))
	for cat, amt := range byCategory {
		if amt.IsZero() {
			continue
		}
		out = append(out, Segment{Category: cat, ColorKey: palette.Color(cat), Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		return byAmountDesc(out[i].Amount, out[j].Amount, out[i].Category, out[j].Category)
	})
	return out
}

// byAmountDesc breaks ties on the category name so repeated runs over the
// same input produce identical output.
func byAmountDesc(a, b core.Money, catA, catB string) bool {
	if c := a.Cmp(b); c != 0 {
		return c > 0
	}
	return catA < catB
}

// Engine bundles the configuration a report depends on: the color palette
// and the location calendar boundaries are computed in.
type Engine struct {
	Palette  Palette
	Location *time.Location
}

// NewEngine returns an engine using the default palette. A nil location
// means time.Local.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{Palette: DefaultPalette(), Location: loc}
}

// Range resolves the reporting range for anchor in the engine location.
func (e *Engine) Range(period Period, anchor time.Time) DateRange {
	return Resolve(period, anchor.In(e.location()))
}

// Compute runs the full pipeline: resolve the range, plan the buckets and
// aggregate transactions into them.
func (e *Engine) Compute(transactions []core.Transaction, period Period, anchor time.Time) Report {
	anchor = anchor.In(e.location())
	report := Aggregate(transactions, Resolve(period, anchor), period, e.Palette)
	report.Anchor = anchor
	return report
}

func (e *Engine) location() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}

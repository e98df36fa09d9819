package core

import (
	"strings"
	"time"
)

// DefaultCategory is preselected for new expenses.
const DefaultCategory = "Food"

// Candidate is a pre-filled expense produced by receipt or free-text
// extraction. Any field may be missing.
type Candidate struct {
	Merchant string
	Amount   *Money
	Date     *time.Time
}

// ToTransaction turns a candidate into an expense draft. Missing dates fall
// back to now, missing amounts stay zero so the draft fails validation until
// the user fills it in.
func (c Candidate) ToTransaction(category string, now time.Time) Transaction {
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}
	t := Transaction{
		Kind:      Expense,
		Category:  category,
		Note:      strings.TrimSpace(c.Merchant),
		Timestamp: now,
	}
	if c.Amount != nil {
		t.Amount = *c.Amount
	}
	if c.Date != nil && !c.Date.IsZero() {
		t.Timestamp = *c.Date
	}
	return t
}

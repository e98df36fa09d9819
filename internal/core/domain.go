package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense Kind = "Expense"
	Income  Kind = "Income"
)

type (
	// Kind tells whether a transaction takes money out or brings it in.
	Kind string

	Transaction struct {
		ID        string
		Amount    Money
		Kind      Kind
		Category  string
		Timestamp time.Time
		Note      string // optional, free text
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrEmptyCategory    = errors.New("empty category")
	ErrMissingTimestamp = errors.New("missing timestamp")
	ErrNoteTooLong      = errors.New("note too long (max 200 characters)")
)

// ParseKind accepts "expense" or "income" in any letter case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense":
		return Expense, nil
	case "income":
		return Income, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) IsValid() bool {
	return k == Expense || k == Income
}

func (k Kind) String() string {
	return string(k)
}

// Validate is applied by the store before writing. Reports never call it:
// whatever the store hands out is aggregated as-is.
func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}
	if len(t.Note) > 200 {
		return ErrNoteTooLong
	}
	return nil
}

// IsExpense reports whether the transaction counts towards spending.
func (t Transaction) IsExpense() bool {
	return t.Kind == Expense
}

// Package core provides the domain entities shared by the store, the
// analytics engine and the HTTP layer.
//
// This file contains the Money type. Amounts are currency agnostic and kept
// as exact decimals so that totals and per-category sums always agree.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Value decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney creates a Money from a whole number of currency units.
func NewMoney(units int64) Money {
	return Money{Value: decimal.NewFromInt(units)}
}

// NewMoneyFromFloat is used at the edges (JSON input, exported sheets) only.
func NewMoneyFromFloat(f float64) Money {
	return Money{Value: decimal.NewFromFloat(f)}
}

// ParseMoney converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs are
// rejected and the result must be strictly positive.
//
// Examples:
//
//	ParseMoney("50000")   -> 50000, nil
//	ParseMoney("12,50")   -> 12.5, nil
//	ParseMoney("-1")      -> error
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Zero, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	m := Money{Value: d}
	if err := m.Validate(); err != nil {
		return Zero, err
	}
	return m, nil
}

func (m Money) Validate() error {
	if !m.Value.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Value: m.Value.Add(o.Value)}
}

func (m Money) Sub(o Money) Money {
	return Money{Value: m.Value.Sub(o.Value)}
}

func (m Money) IsZero() bool {
	return m.Value.IsZero()
}

func (m Money) Equal(o Money) bool {
	return m.Value.Equal(o.Value)
}

// Cmp returns -1, 0 or +1 like decimal.Decimal.Cmp.
func (m Money) Cmp(o Money) int {
	return m.Value.Cmp(o.Value)
}

// Ratio returns m/d as a float. A zero divisor yields 0.
func (m Money) Ratio(d Money) float64 {
	if d.IsZero() {
		return 0
	}
	return m.Value.Div(d.Value).InexactFloat64()
}

// Float64 is for display and spreadsheet export only.
func (m Money) Float64() float64 {
	return m.Value.InexactFloat64()
}

func (m Money) String() string {
	return m.Value.String()
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Value.UnmarshalJSON(data)
}

package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"Expense", Expense, true},
		{"income", Income, true},
		{" EXPENSE ", Expense, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
		} else if !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:    NewMoney(50000),
		Kind:      Expense,
		Category:  "Food",
		Timestamp: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = Zero }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = NewMoney(-5) }, ErrInvalidAmount},
		{"bad kind", func(tx *Transaction) { tx.Kind = "Transfer" }, ErrInvalidKind},
		{"empty category", func(tx *Transaction) { tx.Category = "  " }, ErrEmptyCategory},
		{"zero timestamp", func(tx *Transaction) { tx.Timestamp = time.Time{} }, ErrMissingTimestamp},
		{"long note", func(tx *Transaction) { tx.Note = strings.Repeat("x", 201) }, ErrNoteTooLong},
	}
	for _, tc := range bads {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mut(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
	s := DefaultSettings()
	s.Theme = "neon"
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
	s = DefaultSettings()
	s.DailyLimit = NewMoney(-1)
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for negative limit")
	}
	s = DefaultSettings()
	s.UserName = " "
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestCandidateToTransaction(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
	amount := NewMoney(20000)
	date := time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)

	tx := Candidate{Merchant: " Makan rendang ", Amount: &amount, Date: &date}.ToTransaction("", now)
	if tx.Kind != Expense || tx.Category != DefaultCategory {
		t.Fatalf("unexpected kind/category: %s/%s", tx.Kind, tx.Category)
	}
	if tx.Note != "Makan rendang" || !tx.Amount.Equal(amount) || !tx.Timestamp.Equal(date) {
		t.Fatalf("unexpected draft: %+v", tx)
	}

	empty := Candidate{}.ToTransaction("Transport", now)
	if !empty.Timestamp.Equal(now) || !empty.Amount.IsZero() || empty.Category != "Transport" {
		t.Fatalf("unexpected empty draft: %+v", empty)
	}
	if err := empty.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("draft without amount should not validate, got %v", err)
	}
}

package http

import (
	"fmt"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"duitku/internal/core"
	"duitku/internal/stats"
	"duitku/internal/storage"
)

func newParser(body string) *RequestBodyParser {
	return NewRequestBodyParser(httptest.NewRequest("POST", "/", strings.NewReader(body)))
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		key   string
		want  string
		has   bool
		isErr bool
	}{
		{"json string", `{"note": "  hi\u0007 "}`, "note", "hi", true, false},
		{"json number", `{"amount": 12.5}`, "amount", "12.5", true, false},
		{"json null", `{"amount": null}`, "amount", "", false, false},
		{"form", "note=kopi+susu", "note", "kopi susu", true, false},
		{"empty", "", "note", "", false, false},
		{"bad json", `{"note":`, "note", "", false, true},
		{"too large", strings.Repeat("a", maxBodyBytes+1), "note", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(tt.body)
			err := p.Parse()
			if (err != nil) != tt.isErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.isErr)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if got := p.Has(tt.key); got != tt.has {
				t.Errorf("Has(%q) = %v, want %v", tt.key, got, tt.has)
			}
		})
	}
}

func TestRequestBodyParser_Bool(t *testing.T) {
	p := newParser(`{"a": true, "b": "off", "c": "maybe"}`)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	if v, err := p.Bool("a"); err != nil || !v {
		t.Errorf("Bool(a) = %v, %v", v, err)
	}
	if v, err := p.Bool("b"); err != nil || v {
		t.Errorf("Bool(b) = %v, %v", v, err)
	}
	if _, err := p.Bool("c"); err == nil {
		t.Error("Bool(c) should fail")
	}
}

func TestParseTimestamp(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	now := time.Date(2024, 3, 6, 5, 30, 15, 0, time.UTC) // 12:30:15 WIB

	tests := []struct {
		name string
		body string
		want time.Time
	}{
		{"explicit", `{"timestamp": "2024-01-02T03:04:05Z"}`, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"date only", `{"date": "01/03/2024"}`, time.Date(2024, 3, 1, 12, 30, 15, 0, jakarta)},
		{"nothing", `{}`, now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(tt.body)
			if err := p.Parse(); err != nil {
				t.Fatal(err)
			}
			got, err := parseTimestamp(p, now, jakarta)
			if err != nil {
				t.Fatalf("parseTimestamp() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTransaction_Defaults(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	p := newParser(`{"amount": "15000"}`)

	tx, err := parseTransaction(p, now, time.UTC)
	if err != nil {
		t.Fatalf("parseTransaction() error = %v", err)
	}
	if tx.Kind != core.Expense || tx.Category != core.DefaultCategory || !tx.Timestamp.Equal(now) {
		t.Errorf("unexpected defaults %+v", tx)
	}
}

func TestParseStatsQuery(t *testing.T) {
	now := time.Date(2024, 3, 6, 23, 30, 0, 0, time.UTC)
	wib := time.FixedZone("WIB", 7*3600)

	tests := []struct {
		query      string
		wantPeriod stats.Period
		wantDay    string
		wantErr    bool
	}{
		{"", stats.Week, "2024-03-07", false},
		{"period=MONTH", stats.Month, "2024-03-07", false},
		{"period=year&date=2023-12-31", stats.Year, "2023-12-31", false},
		{"period=quarter", "", "", true},
		{"date=31/12/2023", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			period, anchor, err := parseStatsQuery(q, now, wib)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if period != tt.wantPeriod || anchor.Format("2006-01-02") != tt.wantDay {
				t.Errorf("got %s %s, want %s %s", period, anchor.Format("2006-01-02"), tt.wantPeriod, tt.wantDay)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", defaultListLimit, false},
		{"10", 10, false},
		{"100000", maxListLimit, false},
		{"0", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		got, err := parseLimit(url.Values{"limit": {tt.in}})
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseLimit(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{badRequest("nope"), 400},
		{fmt.Errorf("x: %w", stats.ErrUnknownPeriod), 400},
		{fmt.Errorf("get: %w", storage.ErrNotFound), 404},
		{fmt.Errorf("save: %w", core.ErrInvalidAmount), 422},
		{fmt.Errorf("save: %w", core.ErrInvalidSettings), 422},
		{fmt.Errorf("disk full"), 500},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

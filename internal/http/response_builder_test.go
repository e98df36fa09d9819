package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"duitku/internal/core"
	"duitku/internal/stats"
)

func TestWriteError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeError(rec, req, errors.New("open /var/db/secret.db: permission denied"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret.db") {
		t.Errorf("internal cause leaked: %s", rec.Body.String())
	}
}

func TestWriteError_ShowsValidationMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeError(rec, req, core.ErrEmptyCategory)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnprocessableEntity || body.Error != core.ErrEmptyCategory.Error() {
		t.Errorf("got %d %q", rec.Code, body.Error)
	}
}

func TestNewReportResponse_YearLabels(t *testing.T) {
	anchor := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		{ID: "a", Amount: core.NewMoney(300), Kind: core.Expense, Category: "Food", Timestamp: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Amount: core.NewMoney(100), Kind: core.Expense, Category: "Unlisted", Timestamp: time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)},
	}
	rep := stats.NewEngine(time.UTC).Compute(txs, stats.Year, anchor)

	resp := newReportResponse(rep)
	if resp.Period != "year" || len(resp.Buckets) != 12 {
		t.Fatalf("period %q with %d buckets", resp.Period, len(resp.Buckets))
	}
	feb := resp.Buckets[1]
	if feb.Key != "2024-02-01" || feb.Label != "2024-02" || len(feb.Segments) != 2 {
		t.Errorf("february bucket = %+v", feb)
	}
	if resp.CategoryBreakdown[1].Color != "#BDBDBD" {
		t.Errorf("unlisted category color = %q", resp.CategoryBreakdown[1].Color)
	}
	if resp.Empty {
		t.Error("report with expenses marked empty")
	}
}

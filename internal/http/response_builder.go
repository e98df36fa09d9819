package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"duitku/internal/core"
	applog "duitku/internal/log"
	"duitku/internal/services"
	"duitku/internal/sheets"
	"duitku/internal/stats"
	"duitku/internal/storage"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "component", applog.ComponentHTTP, "error", err)
	}
}

// writeError maps err to a status code. Internal failures are logged with
// their cause and reported to the client without it.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, RequestID: w.Header().Get(applog.RequestIDHeader)})
}

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidKind,
	core.ErrEmptyCategory,
	core.ErrMissingTimestamp,
	core.ErrNoteTooLong,
	core.ErrUnrecognizedDate,
	core.ErrInvalidSettings,
}

func errorStatus(err error) int {
	var bad badRequestError
	switch {
	case errors.As(err, &bad), errors.Is(err, stats.ErrUnknownPeriod):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

type transactionResponse struct {
	ID        string     `json:"id,omitempty"`
	Amount    core.Money `json:"amount"`
	Kind      string     `json:"kind"`
	Category  string     `json:"category"`
	Timestamp time.Time  `json:"timestamp"`
	Note      string     `json:"note"`
}

func newTransactionResponse(t core.Transaction, loc *time.Location) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		Amount:    t.Amount,
		Kind:      t.Kind.String(),
		Category:  t.Category,
		Timestamp: t.Timestamp.In(loc),
		Note:      t.Note,
	}
}

type draftResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Complete    bool                `json:"complete"`
	Problem     string              `json:"problem,omitempty"`
}

type rangeResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type categoryStatResponse struct {
	Category   string     `json:"category"`
	Amount     core.Money `json:"amount"`
	Percentage float64    `json:"percentage"`
	Color      string     `json:"color"`
}

type segmentResponse struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
	Color    string     `json:"color"`
}

type bucketResponse struct {
	Key          string            `json:"key"`
	Label        string            `json:"label"`
	ExpenseTotal core.Money        `json:"expense_total"`
	Segments     []segmentResponse `json:"segments"`
}

type reportResponse struct {
	Period            string                 `json:"period"`
	Anchor            time.Time              `json:"anchor"`
	Range             rangeResponse          `json:"range"`
	TotalIncome       core.Money             `json:"total_income"`
	TotalExpense      core.Money             `json:"total_expense"`
	Balance           core.Money             `json:"balance"`
	Empty             bool                   `json:"empty"`
	CategoryBreakdown []categoryStatResponse `json:"category_breakdown"`
	Buckets           []bucketResponse       `json:"buckets"`
}

func newReportResponse(r stats.Report) reportResponse {
	resp := reportResponse{
		Period:            r.Period.String(),
		Anchor:            r.Anchor,
		Range:             rangeResponse{Start: r.Range.Start, End: r.Range.End},
		TotalIncome:       r.TotalIncome,
		TotalExpense:      r.TotalExpense,
		Balance:           r.Balance,
		Empty:             r.IsEmpty(),
		CategoryBreakdown: make([]categoryStatResponse, len(r.CategoryBreakdown)),
		Buckets:           make([]bucketResponse, len(r.Buckets)),
	}
	for i, c := range r.CategoryBreakdown {
		resp.CategoryBreakdown[i] = categoryStatResponse{
			Category:   c.Category,
			Amount:     c.Amount,
			Percentage: c.Percentage,
			Color:      c.ColorKey,
		}
	}
	for i, b := range r.Buckets {
		segs := make([]segmentResponse, len(b.Segments))
		for j, s := range b.Segments {
			segs[j] = segmentResponse{Category: s.Category, Amount: s.Amount, Color: s.ColorKey}
		}
		resp.Buckets[i] = bucketResponse{
			Key:          b.Key.Format("2006-01-02"),
			Label:        sheets.BucketLabel(r, b),
			ExpenseTotal: b.ExpenseTotal,
			Segments:     segs,
		}
	}
	return resp
}

type budgetResponse struct {
	Date      string     `json:"date"`
	Spent     core.Money `json:"spent"`
	Limit     core.Money `json:"limit"`
	Remaining core.Money `json:"remaining"`
	Exceeded  bool       `json:"exceeded"`
	Used      float64    `json:"used"`
}

func newBudgetResponse(b services.DailyBudget) budgetResponse {
	return budgetResponse{
		Date:      b.Date.Format("2006-01-02"),
		Spent:     b.Spent,
		Limit:     b.Limit,
		Remaining: b.Remaining,
		Exceeded:  b.Exceeded,
		Used:      b.Used,
	}
}

type settingsResponse struct {
	UserName      string     `json:"user_name"`
	DailyLimit    core.Money `json:"daily_limit"`
	Theme         string     `json:"theme"`
	DailyReminder bool       `json:"daily_reminder"`
}

func newSettingsResponse(s core.Settings) settingsResponse {
	return settingsResponse{
		UserName:      s.UserName,
		DailyLimit:    s.DailyLimit,
		Theme:         s.Theme,
		DailyReminder: s.DailyReminder,
	}
}

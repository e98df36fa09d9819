package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	ports "duitku/internal/sheets"
	"duitku/internal/stats"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var _ ports.ReportExporter = (*Client)(nil)

// New creates a Sheets client for spreadsheetID. Without options the
// service account credentials are taken from the environment; tests pass
// their own endpoint and HTTP client instead.
func New(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	var (
		svc *gsheet.Service
		err error
	)
	if len(opts) > 0 {
		svc, err = gsheet.NewService(ctx, opts...)
	} else {
		svc, err = newSheetsService(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, err := serviceAccountCredentials(ctx)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func serviceAccountCredentials(ctx context.Context) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ExportReport writes r to its own tab, creating the tab on first export and
// clearing it on later ones.
func (c *Client) ExportReport(ctx context.Context, r stats.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if !r.Period.IsValid() {
		return "", errors.New("report has no period")
	}

	tab := ports.Title(r)
	if err := c.ensureSheet(ctx, tab); err != nil {
		return "", err
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1Range(tab, "A:Z"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to clear sheet %s: %w", tab, err)
	}

	rows := reportRows(r)
	rng := a1Range(tab, fmt.Sprintf("A1:%s%d", columnName(width(rows)), len(rows)))
	// RAW keeps category names such as "=1+1" as text instead of formulas
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update sheet %s: %w", tab, err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"export_ref", rng,
		"period", r.Period,
		"bucket_count", len(r.Buckets))
	return rng, nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", title, err)
	}
	slog.InfoContext(ctx, "Created report sheet", "sheet", title)
	return nil
}

// reportRows lays a report out as a summary block, the category breakdown
// and the bucket series, separated by blank rows.
func reportRows(r stats.Report) [][]any {
	rows := [][]any{
		{"Period", ports.Title(r)},
		{"From", r.Range.Start.Format("2006-01-02")},
		{"To", r.Range.End.Format("2006-01-02")},
		{"Total income", r.TotalIncome.Float64()},
		{"Total expense", r.TotalExpense.Float64()},
		{"Balance", r.Balance.Float64()},
		{},
		{"Category", "Amount", "Share", "Color"},
	}
	for _, c := range r.CategoryBreakdown {
		rows = append(rows, []any{c.Category, c.Amount.Float64(), round4(c.Percentage), c.ColorKey})
	}

	rows = append(rows, []any{}, []any{"Date", "Expense total", "Categories"})
	for _, b := range r.Buckets {
		parts := make([]string, len(b.Segments))
		for i, s := range b.Segments {
			parts[i] = s.Category + " " + s.Amount.String()
		}
		rows = append(rows, []any{ports.BucketLabel(r, b), b.ExpenseTotal.Float64(), strings.Join(parts, ", ")})
	}
	return rows
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

func width(rows [][]any) int {
	w := 1
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// a1Range qualifies cells with a quoted sheet title, doubling any quotes
// inside the title.
func a1Range(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

// columnName converts a 1-based column index to A1 notation letters.
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}

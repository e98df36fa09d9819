package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"duitku/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a transaction id has no row.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const transactionColumns = `id, amount, kind, category, ts_ms, note`

// CreateTransaction validates and inserts t, assigning an id when t has none.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	now := r.now().UnixMilli()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount.Value.String(), string(t.Kind), t.Category, t.Timestamp.UnixMilli(), t.Note, now, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", t.ID,
		"kind", t.Kind,
		"category", t.Category,
		"amount", t.Amount.String(),
		"timestamp", t.Timestamp.Format(time.RFC3339))

	// Reflect what a later read returns
	t.Timestamp = time.UnixMilli(t.Timestamp.UnixMilli())
	return t, nil
}

// UpdateTransaction overwrites every field of the row with id t.ID.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount = ?, kind = ?, category = ?, ts_ms = ?, note = ?, updated_at = ?
		 WHERE id = ?`,
		t.Amount.Value.String(), string(t.Kind), t.Category, t.Timestamp.UnixMilli(), t.Note, r.now().UnixMilli(), t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	if err := expectOneRow(res); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", t.ID, err)
	}

	slog.InfoContext(ctx, "Transaction updated", "transaction_id", t.ID)

	t.Timestamp = time.UnixMilli(t.Timestamp.UnixMilli())
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return nil
}

// ListRecent returns the newest transactions first.
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY ts_ms DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	return collect(rows)
}

// ListBetween returns every transaction whose timestamp falls within
// [start, end], both ends inclusive, newest first.
func (r *SQLiteRepository) ListBetween(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE ts_ms >= ? AND ts_ms <= ?
		 ORDER BY ts_ms DESC, id`,
		start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list transactions between: %w", err)
	}
	return collect(rows)
}

// ExpenseTotalBetween sums expense amounts within [start, end].
func (r *SQLiteRepository) ExpenseTotalBetween(ctx context.Context, start, end time.Time) (core.Money, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount FROM transactions WHERE kind = ? AND ts_ms >= ? AND ts_ms <= ?`,
		string(core.Expense), start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return core.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	defer rows.Close()

	// Amounts are TEXT decimals; SUM() would go through float
	total := core.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return core.Zero, fmt.Errorf("scan amount: %w", err)
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return core.Zero, fmt.Errorf("parse stored amount %q: %w", raw, err)
		}
		total = total.Add(core.Money{Value: d})
	}
	if err := rows.Err(); err != nil {
		return core.Zero, fmt.Errorf("iterate amounts: %w", err)
	}
	return total, nil
}

// GetSettings returns the stored settings, or the defaults if none were saved.
func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	var (
		s        core.Settings
		limit    string
		reminder int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_name, daily_limit, theme, daily_reminder FROM settings WHERE id = 1`).
		Scan(&s.UserName, &limit, &s.Theme, &reminder)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	d, err := decimal.NewFromString(limit)
	if err != nil {
		return core.Settings{}, fmt.Errorf("parse daily limit %q: %w", limit, err)
	}
	s.DailyLimit = core.Money{Value: d}
	s.DailyReminder = reminder != 0
	return s, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	reminder := 0
	if s.DailyReminder {
		reminder = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, user_name, daily_limit, theme, daily_reminder, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_name = excluded.user_name,
		   daily_limit = excluded.daily_limit,
		   theme = excluded.theme,
		   daily_reminder = excluded.daily_reminder,
		   updated_at = excluded.updated_at`,
		s.UserName, s.DailyLimit.Value.String(), s.Theme, reminder, r.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	slog.InfoContext(ctx, "Settings saved", "user_name", s.UserName, "theme", s.Theme)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t      core.Transaction
		amount string
		kind   string
		tsMs   int64
	)
	if err := s.Scan(&t.ID, &amount, &kind, &t.Category, &tsMs, &t.Note); err != nil {
		return core.Transaction{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	t.Amount = core.Money{Value: d}
	t.Kind = core.Kind(kind)
	t.Timestamp = time.UnixMilli(tsMs)
	return t, nil
}

func collect(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

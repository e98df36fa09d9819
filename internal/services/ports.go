package services

import (
	"context"
	"time"

	"duitku/internal/amqp"
	"duitku/internal/core"
)

// TransactionStore is the write side the services need from storage.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListRecent(ctx context.Context, limit int) ([]core.Transaction, error)
}

// RangeReader answers inclusive time-range queries.
type RangeReader interface {
	ListBetween(ctx context.Context, start, end time.Time) ([]core.Transaction, error)
}

type ExpenseSummer interface {
	ExpenseTotalBetween(ctx context.Context, start, end time.Time) (core.Money, error)
}

type SettingsStore interface {
	GetSettings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, s core.Settings) error
}

// ChangePublisher sends change notifications to other processes. previousAt
// is the timestamp a transaction was moved away from, or zero.
type ChangePublisher interface {
	PublishTransactionChanged(ctx context.Context, id string, action amqp.Action, occurredAt, previousAt time.Time) error
}

// CacheInvalidator drops derived results a write may have made stale.
type CacheInvalidator interface {
	Invalidate()
}

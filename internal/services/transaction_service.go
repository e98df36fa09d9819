package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"duitku/internal/amqp"
	"duitku/internal/core"
)

// TransactionService writes transactions through the store and announces
// every successful write, both in-process and over AMQP. Caches handed in
// as invalidators are purged before a write returns, so a read that follows
// a write always sees it.
type TransactionService struct {
	store        TransactionStore
	publisher    ChangePublisher
	notifier     *Notifier
	invalidators []CacheInvalidator
}

// NewTransactionService accepts a nil publisher or notifier.
func NewTransactionService(store TransactionStore, publisher ChangePublisher, notifier *Notifier, invalidators ...CacheInvalidator) *TransactionService {
	return &TransactionService{
		store:        store,
		publisher:    publisher,
		notifier:     notifier,
		invalidators: invalidators,
	}
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	saved, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.announce(ctx, saved, amqp.ActionCreated, time.Time{})
	return saved, nil
}

// Update rewrites the transaction. When its timestamp changes, the change
// event also carries the old one so the period it left is recomputed.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}
	saved, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	var previous time.Time
	if !existing.Timestamp.Equal(saved.Timestamp) {
		previous = existing.Timestamp
	}
	s.announce(ctx, saved, amqp.ActionUpdated, previous)
	return saved, nil
}

// Delete removes the transaction. The stored copy is read first so the
// change event can carry the timestamp of the period it leaves.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.announce(ctx, existing, amqp.ActionDeleted, time.Time{})
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *TransactionService) ListRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	txs, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) announce(ctx context.Context, t core.Transaction, action amqp.Action, previous time.Time) {
	for _, inv := range s.invalidators {
		inv.Invalidate()
	}
	if s.notifier != nil {
		s.notifier.Publish(ChangeEvent{
			TransactionID:      t.ID,
			Action:             action,
			OccurredAt:         t.Timestamp,
			PreviousOccurredAt: previous,
		})
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping change message",
			"transaction_id", t.ID)
		return
	}
	// The write already succeeded; a lost message only delays the export
	if err := s.publisher.PublishTransactionChanged(ctx, t.ID, action, t.Timestamp, previous); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"transaction_id", t.ID, "action", action, "error", err)
	}
}

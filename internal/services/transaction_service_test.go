package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"duitku/internal/amqp"
	"duitku/internal/core"
	"duitku/internal/stats"
)

func lunch(ts time.Time) core.Transaction {
	return core.Transaction{Amount: core.NewMoney(50000), Kind: core.Expense, Category: "Food", Timestamp: ts}
}

func TestTransactionService_CreatePublishesAndNotifies(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	notifier := NewNotifier()
	events, unsubscribe := notifier.Subscribe(1)
	defer unsubscribe()

	svc := NewTransactionService(store, pub, notifier)
	ts := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	saved, err := svc.Create(context.Background(), lunch(ts))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(pub.sent) != 1 || pub.sent[0].id != saved.ID || pub.sent[0].action != amqp.ActionCreated || !pub.sent[0].occurredAt.Equal(ts) {
		t.Errorf("unexpected published messages %+v", pub.sent)
	}
	select {
	case ev := <-events:
		if ev.TransactionID != saved.ID || ev.Action != amqp.ActionCreated {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Error("expected a change event")
	}
}

func TestTransactionService_PublishFailureDoesNotFailWrite(t *testing.T) {
	store := newMemStore()
	svc := NewTransactionService(store, &fakePublisher{err: errors.New("broker down")}, nil)

	saved, err := svc.Create(context.Background(), lunch(time.Now()))
	if err != nil {
		t.Fatalf("Create() should succeed when publishing fails, got %v", err)
	}
	if _, err := store.GetTransaction(context.Background(), saved.ID); err != nil {
		t.Errorf("transaction not stored: %v", err)
	}
}

func TestTransactionService_StoreFailureIsReturned(t *testing.T) {
	store := newMemStore()
	store.fail = true
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, nil)

	if _, err := svc.Create(context.Background(), lunch(time.Now())); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(pub.sent) != 0 {
		t.Error("nothing should be published on a failed write")
	}
}

func TestTransactionService_DeleteCarriesOriginalTimestamp(t *testing.T) {
	ts := time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)
	store := newMemStore()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, nil)
	ctx := context.Background()

	saved, _ := svc.Create(ctx, lunch(ts))
	if err := svc.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	last := pub.sent[len(pub.sent)-1]
	if last.action != amqp.ActionDeleted || !last.occurredAt.Equal(ts) {
		t.Errorf("unexpected delete message %+v", last)
	}

	if err := svc.Delete(ctx, saved.ID); !errors.Is(err, errNotFound) {
		t.Errorf("deleting twice should surface not found, got %v", err)
	}
}

func TestTransactionService_Update(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, nil)
	ctx := context.Background()

	saved, _ := svc.Create(ctx, lunch(time.Now()))
	saved.Category = "Transport"
	if _, err := svc.Update(ctx, saved); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ := svc.Get(ctx, saved.ID)
	if got.Category != "Transport" {
		t.Errorf("category = %q", got.Category)
	}
	if pub.sent[len(pub.sent)-1].action != amqp.ActionUpdated {
		t.Error("expected an updated message")
	}
}

func TestTransactionService_UpdateCarriesPreviousTimestamp(t *testing.T) {
	march := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	july := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	store := newMemStore()
	pub := &fakePublisher{}
	notifier := NewNotifier()
	events, unsubscribe := notifier.Subscribe(4)
	defer unsubscribe()
	svc := NewTransactionService(store, pub, notifier)
	ctx := context.Background()

	saved, _ := svc.Create(ctx, lunch(march))
	<-events

	saved.Note = "same day"
	if _, err := svc.Update(ctx, saved); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if last := pub.sent[len(pub.sent)-1]; !last.previousAt.IsZero() {
		t.Errorf("unmoved update carries previous %v", last.previousAt)
	}
	<-events

	saved.Timestamp = july
	if _, err := svc.Update(ctx, saved); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	last := pub.sent[len(pub.sent)-1]
	if !last.occurredAt.Equal(july) || !last.previousAt.Equal(march) {
		t.Errorf("moved update published %+v, want occurred %v previous %v", last, july, march)
	}
	if ev := <-events; !ev.PreviousOccurredAt.Equal(march) {
		t.Errorf("event previous = %v, want %v", ev.PreviousOccurredAt, march)
	}
}

func TestTransactionService_UpdateMissingIsNotPublished(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(newMemStore(), pub, nil)

	_, err := svc.Update(context.Background(), core.Transaction{ID: "nope"})
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(pub.sent) != 0 {
		t.Errorf("published %+v for a failed update", pub.sent)
	}
}

func TestTransactionService_ReportSeesWriteImmediately(t *testing.T) {
	anchor := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	reports, _ := newReportService(store)
	notifier := NewNotifier()
	// A subscriber that never reads: every event to it is dropped
	_, unsubscribe := notifier.Subscribe(0)
	defer unsubscribe()

	svc := NewTransactionService(store, nil, notifier, reports)
	ctx := context.Background()

	for i := 1; i <= 50; i++ {
		before, err := reports.Report(ctx, stats.Week, anchor)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Create(ctx, lunch(anchor)); err != nil {
			t.Fatal(err)
		}
		after, err := reports.Report(ctx, stats.Week, anchor)
		if err != nil {
			t.Fatal(err)
		}
		want := before.TotalExpense.Add(core.NewMoney(50000))
		if !after.TotalExpense.Equal(want) {
			t.Fatalf("write %d: total after create = %s, want %s", i, after.TotalExpense, want)
		}
	}

	// Moving the transaction out of the week is visible at once too
	txs, _ := store.ListRecent(ctx, 1)
	moved := txs[0]
	moved.Timestamp = anchor.AddDate(0, 1, 0)
	if _, err := svc.Update(ctx, moved); err != nil {
		t.Fatal(err)
	}
	week, _ := reports.Report(ctx, stats.Week, anchor)
	if !week.TotalExpense.Equal(core.NewMoney(49 * 50000)) {
		t.Errorf("total after move = %s", week.TotalExpense)
	}

	if month, _ := reports.Report(ctx, stats.Month, moved.Timestamp); !month.TotalExpense.Equal(core.NewMoney(50000)) {
		t.Errorf("month total after move = %s", month.TotalExpense)
	}
	if err := svc.Delete(ctx, txs[0].ID); err != nil {
		t.Fatal(err)
	}
	month, _ := reports.Report(ctx, stats.Month, moved.Timestamp)
	if !month.TotalExpense.IsZero() {
		t.Errorf("month total after delete = %s", month.TotalExpense)
	}
}

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	n := NewNotifier()
	ch, unsubscribe := n.Subscribe(0)
	if n.Subscribers() != 1 {
		t.Fatalf("subscribers = %d", n.Subscribers())
	}

	// Unbuffered with no reader: the event is dropped, not blocked on
	n.Publish(ChangeEvent{TransactionID: "x"})

	unsubscribe()
	unsubscribe()
	if n.Subscribers() != 0 {
		t.Fatalf("subscribers after unsubscribe = %d", n.Subscribers())
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
}

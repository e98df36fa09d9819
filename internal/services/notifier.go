package services

import (
	"log/slog"
	"sync"
	"time"

	"duitku/internal/amqp"
)

// ChangeEvent tells in-process listeners that a transaction was written.
// PreviousOccurredAt is set only when an update moved the transaction to
// another time.
type ChangeEvent struct {
	TransactionID      string
	Action             amqp.Action
	OccurredAt         time.Time
	PreviousOccurredAt time.Time
}

// Notifier fans change events out to subscribers. Slow subscribers miss
// events rather than block writers.
type Notifier struct {
	mu   sync.RWMutex
	subs map[chan ChangeEvent]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[chan ChangeEvent]struct{})}
}

// Subscribe returns a channel of events and a function that ends the
// subscription and closes the channel.
func (n *Notifier) Subscribe(buffer int) (<-chan ChangeEvent, func()) {
	ch := make(chan ChangeEvent, buffer)

	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, ch)
			n.mu.Unlock()
			close(ch)
		})
	}
}

func (n *Notifier) Publish(ev ChangeEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("Dropping change event for slow subscriber",
				"component", "services",
				"transaction_id", ev.TransactionID,
				"action", ev.Action)
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

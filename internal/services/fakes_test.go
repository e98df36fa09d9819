package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"duitku/internal/amqp"
	"duitku/internal/core"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory stand-in for storage.SQLiteRepository.
type memStore struct {
	mu       sync.Mutex
	txs      map[string]core.Transaction
	settings core.Settings
	seq      int
	fail     bool
	queries  atomic.Int64
}

func newMemStore(txs ...core.Transaction) *memStore {
	s := &memStore{txs: map[string]core.Transaction{}, settings: core.DefaultSettings()}
	for _, t := range txs {
		s.seq++
		if t.ID == "" {
			t.ID = fmt.Sprintf("seed-%d", s.seq)
		}
		s.txs[t.ID] = t
	}
	return s
}

func (s *memStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return core.Transaction{}, errStoreDown
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.seq++
	t.ID = fmt.Sprintf("tx-%d", s.seq)
	s.txs[t.ID] = t
	return t, nil
}

func (s *memStore) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[t.ID]; !ok {
		return core.Transaction{}, errNotFound
	}
	s.txs[t.ID] = t
	return t, nil
}

var errNotFound = errors.New("not found")

func (s *memStore) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, errNotFound
	}
	return t, nil
}

func (s *memStore) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return errNotFound
	}
	delete(s.txs, id)
	return nil
}

func (s *memStore) ListRecent(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListBetween(_ context.Context, start, end time.Time) ([]core.Transaction, error) {
	s.queries.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errStoreDown
	}
	var out []core.Transaction
	for _, t := range s.txs {
		if !t.Timestamp.Before(start) && !t.Timestamp.After(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) ExpenseTotalBetween(_ context.Context, start, end time.Time) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return core.Zero, errStoreDown
	}
	total := core.Zero
	for _, t := range s.txs {
		if t.IsExpense() && !t.Timestamp.Before(start) && !t.Timestamp.After(end) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (s *memStore) GetSettings(context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *memStore) SaveSettings(_ context.Context, st core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = st
	return nil
}

type published struct {
	id         string
	action     amqp.Action
	occurredAt time.Time
	previousAt time.Time
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *fakePublisher) PublishTransactionChanged(_ context.Context, id string, action amqp.Action, occurredAt, previousAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{id, action, occurredAt, previousAt})
	return nil
}

package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Action says what happened to a transaction.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// TransactionChangedMessage announces a write to the transaction store.
// Consumers re-read whatever they need; the message only carries the id and
// the transaction's timestamps so the affected periods can be located.
// PreviousOccurredAt is present when an update moved the transaction.
type TransactionChangedMessage struct {
	ID                 string     `json:"id"`
	Action             Action     `json:"action"`
	OccurredAt         time.Time  `json:"occurred_at"`
	PreviousOccurredAt *time.Time `json:"previous_occurred_at,omitempty"`
	Timestamp          time.Time  `json:"timestamp"`
}

// NewTransactionChangedMessage stamps the message with the current time. A
// zero previousAt, or one equal to occurredAt, is left out.
func NewTransactionChangedMessage(id string, action Action, occurredAt, previousAt time.Time) *TransactionChangedMessage {
	msg := &TransactionChangedMessage{
		ID:         id,
		Action:     action,
		OccurredAt: occurredAt,
		Timestamp:  time.Now(),
	}
	if !previousAt.IsZero() && !previousAt.Equal(occurredAt) {
		msg.PreviousOccurredAt = &previousAt
	}
	return msg
}

// Anchors returns the instants whose periods the change touched: the
// transaction's timestamp, then the one it was moved away from.
func (m *TransactionChangedMessage) Anchors() []time.Time {
	anchors := []time.Time{m.OccurredAt}
	if m.PreviousOccurredAt != nil && !m.PreviousOccurredAt.IsZero() && !m.PreviousOccurredAt.Equal(m.OccurredAt) {
		anchors = append(anchors, *m.PreviousOccurredAt)
	}
	return anchors
}

func (m *TransactionChangedMessage) Validate() error {
	if m.ID == "" {
		return errors.New("missing transaction id")
	}
	if !m.Action.IsValid() {
		return fmt.Errorf("unknown action %q", m.Action)
	}
	if m.OccurredAt.IsZero() {
		return errors.New("missing occurred_at")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *TransactionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangedMessageFromJSON decodes and validates a message body
func TransactionChangedMessageFromJSON(data []byte) (*TransactionChangedMessage, error) {
	var msg TransactionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

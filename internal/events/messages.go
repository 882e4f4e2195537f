package events

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "transaction.created"
	ActionDeleted = "transaction.deleted"
)

// MutationEvent describes one successful ledger mutation. For creates the
// TransactionID is empty: the service does not return the new id, so the
// event carries the submitted fields instead.
type MutationEvent struct {
	Action        string    `json:"action"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Type          string    `json:"type,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Category      string    `json:"category,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewCreatedEvent(txType, amount, category string) *MutationEvent {
	return &MutationEvent{
		Action:    ActionCreated,
		Type:      txType,
		Amount:    amount,
		Category:  category,
		Timestamp: time.Now(),
	}
}

func NewDeletedEvent(transactionID string) *MutationEvent {
	return &MutationEvent{
		Action:        ActionDeleted,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *MutationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON creates an event from JSON bytes
func MutationEventFromJSON(data []byte) (*MutationEvent, error) {
	var e MutationEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

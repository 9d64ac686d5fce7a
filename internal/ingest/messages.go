package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidMessage marks a delivery that can never be processed. It is dropped, not requeued.
var ErrInvalidMessage = errors.New("invalid ingest message")

// TransactionMessage is one externally captured transaction, as sent by the messaging bot.
// Owner is empty for rows no user has claimed yet.
type TransactionMessage struct {
	Date          string    `json:"date"`
	Establishment string    `json:"establishment"`
	Amount        string    `json:"amount"`
	Kind          string    `json:"kind"`
	Category      string    `json:"category"`
	Notes         string    `json:"notes,omitempty"`
	Owner         string    `json:"owner,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionMessage creates a message stamped with the current time.
func NewTransactionMessage(date, establishment, amount, kind, category, notes, owner string) *TransactionMessage {
	return &TransactionMessage{
		Date:          date,
		Establishment: establishment,
		Amount:        amount,
		Kind:          kind,
		Category:      category,
		Notes:         notes,
		Owner:         owner,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionMessageFromJSON decodes a delivery body. The amount may be a JSON number or a string.
func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var raw struct {
		TransactionMessage
		Amount json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	msg := raw.TransactionMessage

	amount := bytes.TrimSpace(raw.Amount)
	switch {
	case len(amount) == 0 || bytes.Equal(amount, []byte("null")):
		msg.Amount = ""
	case amount[0] == '"':
		if err := json.Unmarshal(amount, &msg.Amount); err != nil {
			return nil, fmt.Errorf("%w: amount: %v", ErrInvalidMessage, err)
		}
	default:
		var n json.Number
		if err := json.Unmarshal(amount, &n); err != nil {
			return nil, fmt.Errorf("%w: amount: %v", ErrInvalidMessage, err)
		}
		msg.Amount = n.String()
	}

	msg.Owner = strings.TrimSpace(msg.Owner)
	return &msg, nil
}

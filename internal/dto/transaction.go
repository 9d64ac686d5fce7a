package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AmountInput accepts the amount either as a JSON number or as a string.
// Strings may use a decimal comma ("12,50").
type AmountInput string

// UnmarshalJSON keeps the literal so the service can validate it.
func (a *AmountInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string: %w", err)
	}
	*a = AmountInput(n.String())
	return nil
}

// TransactionRequest is the add/edit form. Update overwrites every field.
type TransactionRequest struct {
	Date          string      `json:"date"`
	Establishment string      `json:"establishment"`
	Amount        AmountInput `json:"amount"`
	Kind          string      `json:"kind"`
	Category      string      `json:"category"`
	Notes         string      `json:"notes"`
}

// ToInput converts the request to the service input. Validation happens in the service.
func (r TransactionRequest) ToInput() domain.TransactionInput {
	return domain.TransactionInput{
		Date:          r.Date,
		Establishment: r.Establishment,
		Amount:        string(r.Amount),
		Kind:          r.Kind,
		Category:      r.Category,
		Notes:         r.Notes,
	}
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string                 `json:"transactionId"`
	Date          *time.Time             `json:"date"` // Null when the stored date could not be read
	RawDate       string                 `json:"rawDate"`
	CreatedAt     *time.Time             `json:"createdAt,omitempty"`
	Establishment string                 `json:"establishment"`
	Amount        decimal.NullDecimal    `json:"amount"`
	Kind          domain.TransactionKind `json:"kind"`
	Category      string                 `json:"category"`
	Notes         *string                `json:"notes"`
	Claimed       bool                   `json:"claimed"`
}

// ListTransactionsResponse wraps a list of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// DeleteTransactionResponse acknowledges a deletion.
type DeleteTransactionResponse struct {
	TransactionID string `json:"transactionId"`
	Deleted       bool   `json:"deleted"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.ID,
		Date:          t.OccurredAt,
		RawDate:       t.RawDate,
		CreatedAt:     t.CreatedAt,
		Establishment: t.Establishment,
		Amount:        t.Amount,
		Kind:          t.Kind,
		Category:      t.Category,
		Notes:         t.Notes,
		Claimed:       t.IsOwned(),
	}
}

// ToTransactionResponses converts a slice of domain.Transaction.
func ToTransactionResponses(ts []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(ts))
	for i, t := range ts {
		out[i] = ToTransactionResponse(t)
	}
	return out
}

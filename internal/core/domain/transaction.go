package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind tells whether a transaction is money going out or coming in.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// Legacy wire values written by the existing dashboard and the messaging bot.
const (
	legacyExpense = "despesa"
	legacyIncome  = "receita"
)

// ParseKind decodes a kind case-insensitively, accepting the legacy wire values.
// It returns false for anything it does not recognise.
func ParseKind(s string) (TransactionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindExpense), legacyExpense:
		return KindExpense, true
	case string(KindIncome), legacyIncome:
		return KindIncome, true
	default:
		return TransactionKind(strings.ToLower(strings.TrimSpace(s))), false
	}
}

// Legacy returns the value stored in the legacy "tipo" column.
func (k TransactionKind) Legacy() string {
	switch k {
	case KindExpense:
		return legacyExpense
	case KindIncome:
		return legacyIncome
	default:
		return string(k)
	}
}

// Valid reports whether k is one of the two known kinds.
func (k TransactionKind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// SuggestedCategories is the fixed list offered by the add/edit forms.
// Stored categories are free text and are not checked against it.
var SuggestedCategories = []string{
	"Alimentação",
	"Transporte",
	"Saúde",
	"Educação",
	"Diversão",
	"Compras",
	"Serviços",
	"Outros",
}

// Transaction is a single income or expense record.
type Transaction struct {
	ID            string              `json:"id"`
	OccurredAt    *time.Time          `json:"occurredAt"`    // Normalized; nil when the source date is unparseable
	RawDate       string              `json:"rawDate"`       // Source date value as received
	CreatedAt     *time.Time          `json:"createdAt"`     // Row creation time, when the store reports it
	OwnerIdentity *string             `json:"ownerIdentity"` // Nil for rows no user has claimed yet
	Establishment string              `json:"establishment"`
	Amount        decimal.NullDecimal `json:"amount"` // Unsigned magnitude; invalid when missing
	Kind          TransactionKind     `json:"kind"`
	Category      string              `json:"category"`
	Notes         *string             `json:"notes"`
}

// AmountOrZero returns the amount, or zero when it is missing.
func (t Transaction) AmountOrZero() decimal.Decimal {
	if !t.Amount.Valid {
		return decimal.Zero
	}
	return t.Amount.Decimal
}

// IsOwned reports whether the row has been assigned to an owner.
func (t Transaction) IsOwned() bool {
	return t.OwnerIdentity != nil && *t.OwnerIdentity != ""
}

// TransactionInput carries the user-editable fields of a transaction.
// Create and Update both overwrite every field.
type TransactionInput struct {
	Date          string `validate:"required"`
	Establishment string `validate:"required,max=255"`
	Amount        string `validate:"required"`
	Kind          string `validate:"required"`
	Category      string `validate:"required,max=100"`
	Notes         string `validate:"max=2000"`
}

// TransactionQuery selects rows from the store. Exactly one of OwnerIdentity or Unowned applies.
type TransactionQuery struct {
	OwnerIdentity string
	Unowned       bool
}

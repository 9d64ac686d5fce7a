package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the shared transactions table.
// Every column except id and created_at is nullable because the messaging bot writes partial rows.
type Transaction struct {
	ID            string              `db:"id"`
	CreatedAt     time.Time           `db:"created_at"`
	When          *string             `db:"quando"`  // Free-text date as written by the producer
	Owner         *string             `db:"user_id"` // Resolved owner identity; NULL until claimed
	Establishment *string             `db:"estabelecimento"`
	Amount        decimal.NullDecimal `db:"valor"`
	Notes         *string             `db:"detalhes"`
	Kind          *string             `db:"tipo"` // despesa | receita
	Category      *string             `db:"categoria"`
}

package repositories

import (
	"context"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
)

// TransactionReader defines read operations for transaction data.
type TransactionReader interface {
	// ListTransactions returns the rows selected by q, newest date first.
	ListTransactions(ctx context.Context, scope domain.Scope, q domain.TransactionQuery) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for transaction data.
// Update and Delete touch rows owned by the scope's owner or unowned and return apperrors.ErrNotFound otherwise.
// Neither changes a row's owner; claiming goes through OwnershipWriter.
type TransactionWriter interface {
	// InsertTransaction creates one row and returns it as stored.
	InsertTransaction(ctx context.Context, scope domain.Scope, txn domain.Transaction) (*domain.Transaction, error)

	// UpdateTransaction overwrites every editable field of the row with txn.ID.
	UpdateTransaction(ctx context.Context, scope domain.Scope, txn domain.Transaction) (*domain.Transaction, error)

	// DeleteTransaction removes the row with the given id.
	DeleteTransaction(ctx context.Context, scope domain.Scope, id string) error
}

// OwnershipWriter assigns unowned rows to an owner.
type OwnershipWriter interface {
	// AssignOwner sets the owner of the listed rows that are still unowned and returns how many changed.
	AssignOwner(ctx context.Context, scope domain.Scope, ids []string, owner string) (int, error)
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	OwnershipWriter
}

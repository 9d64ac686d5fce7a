package services

import (
	"context"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
)

// TransactionReaderSvc defines read operations on a session's transactions.
type TransactionReaderSvc interface {
	// FetchTransactions returns the owned rows, plus unowned ones when configured, deduped and newest first.
	// It never writes to the store.
	FetchTransactions(ctx context.Context, session domain.Session) ([]domain.Transaction, error)
}

// TransactionWriterSvc defines the user mutations.
type TransactionWriterSvc interface {
	// CreateTransaction validates the input and inserts one row owned by the session.
	CreateTransaction(ctx context.Context, session domain.Session, in domain.TransactionInput) (*domain.Transaction, error)

	// UpdateTransaction validates the input and overwrites the row with the given id.
	UpdateTransaction(ctx context.Context, session domain.Session, id string, in domain.TransactionInput) (*domain.Transaction, error)

	// DeleteTransaction removes the row. Without confirmation it returns apperrors.ErrConfirmationRequired.
	DeleteTransaction(ctx context.Context, session domain.Session, id string, confirmed bool) error
}

// TransactionSvcFacade combines the transaction service interfaces.
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}

// DashboardQuery selects one dashboard view.
type DashboardQuery struct {
	Filter   domain.Filter
	Page     int
	PageSize int
}

// DashboardSvc assembles the dashboard view.
type DashboardSvc interface {
	// BuildDashboard never fails; a store error yields an empty, degraded dashboard.
	BuildDashboard(ctx context.Context, session domain.Session, q DashboardQuery) domain.Dashboard
}

// ReconciliationSvc assigns unowned rows to the session's owner.
type ReconciliationSvc interface {
	// ClaimUnowned runs at most once per session. Later calls return the first result with AlreadyRun set.
	ClaimUnowned(ctx context.Context, session domain.Session) (*domain.ClaimResult, error)
}

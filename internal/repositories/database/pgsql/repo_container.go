package pgsql

import (
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard/internal/utils/dates"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the postgres driver: transacoes rows, local accounts and LISTEN/NOTIFY changes.
func NewRepositoryProvider(dbPool *pgxpool.Pool, normalizer *dates.Normalizer) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: newPgxTransactionRepository(dbPool, normalizer),
		AuthProvider:    newPgxUserRepository(dbPool),
		ChangeFeed:      NewChangeListener(dbPool),
	}
}

// NewUserRepository exposes the local account store to the admin command.
func NewUserRepository(dbPool *pgxpool.Pool) *PgxUserRepository {
	return newPgxUserRepository(dbPool)
}

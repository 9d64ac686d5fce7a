package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard/internal/models"
	"github.com/SscSPs/finance_dashboard/internal/utils/dates"
	"github.com/SscSPs/finance_dashboard/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `id, created_at, quando, user_id, estabelecimento, valor, detalhes, tipo, categoria`

// PgxTransactionRepository stores transactions in the shared transacoes table.
type PgxTransactionRepository struct {
	BaseRepository
	normalizer *dates.Normalizer
	now        func() time.Time
}

func newPgxTransactionRepository(db *pgxpool.Pool, normalizer *dates.Normalizer) *PgxTransactionRepository {
	if normalizer == nil {
		normalizer = dates.NewNormalizer(nil)
	}
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: db}, normalizer: normalizer, now: time.Now}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// ListTransactions selects the owned or the unowned rows. quando is free text, so ordering is by
// created_at and the service re-sorts on the normalized date.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, _ domain.Scope, q domain.TransactionQuery) ([]domain.Transaction, error) {
	var (
		where []string
		args  []any
	)
	switch {
	case q.Unowned:
		where = append(where, "user_id IS NULL")
	case q.OwnerIdentity != "":
		args = append(args, q.OwnerIdentity)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	default:
		return nil, fmt.Errorf("%w: owner identity or unowned is required", apperrors.ErrValidation)
	}
	query := `SELECT ` + transactionColumns + ` FROM transacoes WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}
	return mapping.ToDomainTransactionSlice(ms, r.normalizer), nil
}

// InsertTransaction writes one row with a new id.
func (r *PgxTransactionRepository) InsertTransaction(ctx context.Context, _ domain.Scope, txn domain.Transaction) (*domain.Transaction, error) {
	m := mapping.ToModelTransaction(txn)
	m.ID = uuid.NewString()
	m.CreatedAt = r.now()

	query := `
		INSERT INTO transacoes (id, created_at, quando, user_id, estabelecimento, valor, detalhes, tipo, categoria)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + transactionColumns + `;`
	rows, err := r.Pool.Query(ctx, query, m.ID, m.CreatedAt, m.When, m.Owner, m.Establishment, m.Amount, m.Notes, m.Kind, m.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	stored, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	d := mapping.ToDomainTransaction(stored, r.normalizer)
	return &d, nil
}

// UpdateTransaction overwrites the editable fields of a row owned by the scope's owner or unowned.
// Ownership is left as it was.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, scope domain.Scope, txn domain.Transaction) (*domain.Transaction, error) {
	m := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transacoes
		SET quando = $3, estabelecimento = $4, valor = $5, detalhes = $6, tipo = $7, categoria = $8
		WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)
		RETURNING ` + transactionColumns + `;`
	rows, err := r.Pool.Query(ctx, query, m.ID, scope.OwnerIdentity, m.When, m.Establishment, m.Amount, m.Notes, m.Kind, m.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
	}
	stored, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
	}
	d := mapping.ToDomainTransaction(stored, r.normalizer)
	return &d, nil
}

// DeleteTransaction removes a row owned by the scope's owner or unowned.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, scope domain.Scope, id string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM transacoes WHERE id = $1 AND (user_id = $2 OR user_id IS NULL);`, id, scope.OwnerIdentity)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AssignOwner claims the listed rows that are still unowned, in one database transaction.
func (r *PgxTransactionRepository) AssignOwner(ctx context.Context, _ domain.Scope, ids []string, owner string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	cmdTag, err := tx.Exec(ctx, `UPDATE transacoes SET user_id = $1 WHERE id = ANY($2) AND user_id IS NULL;`, owner, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to assign owner: %w", err)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

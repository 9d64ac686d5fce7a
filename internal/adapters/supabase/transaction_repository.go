package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard/internal/utils/dates"
	"github.com/shopspring/decimal"
)

// Column names of the shared table.
const (
	colID       = "id"
	colWhen     = "quando"
	colOwner    = "user_id"
)

// claimBatch bounds the id list of one ownership update so the URL stays short.
const claimBatch = 100

// rowID accepts both uuid and bigint primary keys.
type rowID string

func (id *rowID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = rowID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = rowID(n.String())
	return nil
}

// amountValue reads valor whether the column holds numbers or text. A cell that does not parse
// stays invalid with its raw text kept, so one bad row cannot fail a whole list.
type amountValue struct {
	decimal.NullDecimal
	raw string
}

func (a *amountValue) UnmarshalJSON(b []byte) error {
	*a = amountValue{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	text := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			text = s
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	a.raw = text
	if strings.Contains(text, ",") && !strings.Contains(text, ".") {
		text = strings.Replace(text, ",", ".", 1)
	}
	if d, err := decimal.NewFromString(text); err == nil {
		a.NullDecimal = decimal.NewNullDecimal(d)
	}
	return nil
}

// transactionRow is a row as PostgREST returns it.
type transactionRow struct {
	ID            rowID               `json:"id"`
	CreatedAt     *string             `json:"created_at"`
	When          *string             `json:"quando"`
	Owner         *string             `json:"user_id"`
	Establishment *string             `json:"estabelecimento"`
	Amount        amountValue         `json:"valor"`
	Notes         *string             `json:"detalhes"`
	Kind          *string             `json:"tipo"`
	Category      *string             `json:"categoria"`
}

// transactionPayload is the body of inserts and updates.
type transactionPayload struct {
	When          string          `json:"quando"`
	Owner         *string         `json:"user_id,omitempty"`
	Establishment string          `json:"estabelecimento"`
	Amount        decimal.Decimal `json:"valor"`
	Notes         *string         `json:"detalhes"`
	Kind          string          `json:"tipo"`
	Category      string          `json:"categoria"`
}

// TransactionRepository reads and writes the shared transactions table through PostgREST.
type TransactionRepository struct {
	client     *Client
	normalizer *dates.Normalizer
}

// NewTransactionRepository creates the repository. normalizer reads the heterogeneous date columns.
func NewTransactionRepository(client *Client, normalizer *dates.Normalizer) *TransactionRepository {
	if normalizer == nil {
		normalizer = dates.NewNormalizer(nil)
	}
	return &TransactionRepository{client: client, normalizer: normalizer}
}

var _ portsrepo.TransactionRepositoryFacade = (*TransactionRepository)(nil)

func (r *TransactionRepository) path() string {
	return "/rest/v1/" + r.client.Table()
}

// ListTransactions selects the owned or the unowned rows, newest first.
func (r *TransactionRepository) ListTransactions(ctx context.Context, scope domain.Scope, q domain.TransactionQuery) ([]domain.Transaction, error) {
	f := newFilter().selectCols("*").orderDesc(colWhen)
	switch {
	case q.Unowned:
		f.isNull(colOwner)
	case q.OwnerIdentity != "":
		f.eq(colOwner, q.OwnerIdentity)
	default:
		return nil, fmt.Errorf("%w: owner identity or unowned is required", apperrors.ErrValidation)
	}
	var rows []transactionRow
	if err := r.client.do(ctx, request{method: http.MethodGet, path: r.path(), query: f.values(), accessToken: scope.AccessToken}, &rows); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return r.toDomainList(rows), nil
}

// InsertTransaction writes one row and returns it as stored.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, scope domain.Scope, txn domain.Transaction) (*domain.Transaction, error) {
	var rows []transactionRow
	err := r.client.do(ctx, request{
		method:      http.MethodPost,
		path:        r.path(),
		body:        toPayload(txn),
		accessToken: scope.AccessToken,
		prefer:      "return=representation",
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert returned no row", apperrors.ErrUpstream)
	}
	created := r.toDomain(rows[0])
	return &created, nil
}

// UpdateTransaction overwrites the editable fields of a row owned by the scope's owner or unowned.
// The payload carries no user_id, so ownership is left as it was.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, scope domain.Scope, txn domain.Transaction) (*domain.Transaction, error) {
	f := newFilter().eq(colID, txn.ID).eqOrNull(colOwner, scope.OwnerIdentity)
	body := toPayload(txn)
	body.Owner = nil

	var rows []transactionRow
	err := r.client.do(ctx, request{
		method:      http.MethodPatch,
		path:        r.path(),
		query:       f.values(),
		body:        body,
		accessToken: scope.AccessToken,
		prefer:      "return=representation",
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	updated := r.toDomain(rows[0])
	return &updated, nil
}

// DeleteTransaction removes a row owned by the scope's owner or unowned.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, scope domain.Scope, id string) error {
	f := newFilter().eq(colID, id).eqOrNull(colOwner, scope.OwnerIdentity).selectCols(colID)

	var rows []transactionRow
	err := r.client.do(ctx, request{
		method:      http.MethodDelete,
		path:        r.path(),
		query:       f.values(),
		accessToken: scope.AccessToken,
		prefer:      "return=representation",
	}, &rows)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	if len(rows) == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AssignOwner sets the owner of the listed rows that are still unowned and returns how many changed.
func (r *TransactionRepository) AssignOwner(ctx context.Context, scope domain.Scope, ids []string, owner string) (int, error) {
	total := 0
	for start := 0; start < len(ids); start += claimBatch {
		end := min(start+claimBatch, len(ids))
		f := newFilter().in(colID, ids[start:end]).isNull(colOwner).selectCols(colID)

		var rows []transactionRow
		err := r.client.do(ctx, request{
			method:      http.MethodPatch,
			path:        r.path(),
			query:       f.values(),
			body:        map[string]string{colOwner: owner},
			accessToken: scope.AccessToken,
			prefer:      "return=representation",
		}, &rows)
		if err != nil {
			return total, fmt.Errorf("failed to assign owner: %w", err)
		}
		total += len(rows)
	}
	return total, nil
}

func toPayload(txn domain.Transaction) transactionPayload {
	when := txn.RawDate
	if when == "" && txn.OccurredAt != nil {
		when = txn.OccurredAt.Format("2006-01-02")
	}
	return transactionPayload{
		When:          when,
		Owner:         txn.OwnerIdentity,
		Establishment: txn.Establishment,
		Amount:        txn.AmountOrZero(),
		Notes:         txn.Notes,
		Kind:          txn.Kind.Legacy(),
		Category:      txn.Category,
	}
}

func (r *TransactionRepository) toDomainList(rows []transactionRow) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.toDomain(row))
	}
	return out
}

// toDomain reads the date from quando when present, else from created_at.
func (r *TransactionRepository) toDomain(row transactionRow) domain.Transaction {
	txn := domain.Transaction{
		ID:            string(row.ID),
		Establishment: deref(row.Establishment),
		Amount:        row.Amount.NullDecimal,
		Category:      deref(row.Category),
		Notes:         row.Notes,
	}
	txn.Kind, _ = domain.ParseKind(deref(row.Kind))
	if !row.Amount.Valid && row.Amount.raw != "" {
		r.client.logger.Warn("Unreadable valor, counting it as zero", slog.String("id", txn.ID), slog.String("valor", row.Amount.raw))
	}

	if row.Owner != nil && *row.Owner != "" {
		owner := *row.Owner
		txn.OwnerIdentity = &owner
	}

	txn.RawDate = strings.TrimSpace(deref(row.When))
	if txn.RawDate == "" {
		txn.RawDate = strings.TrimSpace(deref(row.CreatedAt))
	}
	if t, ok := r.normalizer.NormalizeString(txn.RawDate); ok {
		txn.OccurredAt = &t
	}
	if t, ok := r.normalizer.Normalize(row.CreatedAt); ok {
		txn.CreatedAt = &t
	}
	return txn
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

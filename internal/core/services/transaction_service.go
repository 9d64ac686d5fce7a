package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/analytics"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/utils/dates"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// transactionService implements portssvc.TransactionSvcFacade.
type transactionService struct {
	BaseService
	repo             portsrepo.TransactionRepositoryFacade
	publisher        portssvc.RealtimeSvc
	normalizer       *dates.Normalizer
	validate         *validator.Validate
	includeUnclaimed bool
	graceDelay       time.Duration
	now              func() time.Time
}

// TransactionServiceOption is a functional option for configuring the transaction service
type TransactionServiceOption func(*transactionService)

// WithPublisher sets where refresh events go after a mutation.
func WithPublisher(p portssvc.RealtimeSvc) TransactionServiceOption {
	return func(s *transactionService) {
		s.publisher = p
	}
}

// WithNormalizer sets the date normalizer used to read form dates.
func WithNormalizer(n *dates.Normalizer) TransactionServiceOption {
	return func(s *transactionService) {
		s.normalizer = n
	}
}

// WithIncludeUnclaimed controls whether unowned rows are shown alongside owned ones.
func WithIncludeUnclaimed(include bool) TransactionServiceOption {
	return func(s *transactionService) {
		s.includeUnclaimed = include
	}
}

// WithRefreshGraceDelay sets how long to wait after a write before announcing a refresh.
func WithRefreshGraceDelay(d time.Duration) TransactionServiceOption {
	return func(s *transactionService) {
		s.graceDelay = d
	}
}

// NewTransactionService creates a new transaction service with the provided options.
func NewTransactionService(repo portsrepo.TransactionRepositoryFacade, options ...TransactionServiceOption) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		repo:             repo,
		normalizer:       dates.NewNormalizer(time.Local),
		validate:         validator.New(),
		includeUnclaimed: true,
		graceDelay:       100 * time.Millisecond,
		now:              time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// FetchTransactions selects owned and unowned rows concurrently, then merges, dedupes and sorts.
// A failure of the unowned query only drops those rows.
func (s *transactionService) FetchTransactions(ctx context.Context, session domain.Session) ([]domain.Transaction, error) {
	scope := session.Scope()
	if scope.OwnerIdentity == "" {
		return nil, apperrors.NewUnauthorizedError("No identity available for the signed-in user")
	}

	var owned, unowned []domain.Transaction
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.repo.ListTransactions(gctx, scope, domain.TransactionQuery{OwnerIdentity: scope.OwnerIdentity})
		if err != nil {
			return fmt.Errorf("failed to list owned transactions: %w", err)
		}
		owned = rows
		return nil
	})

	if s.includeUnclaimed {
		g.Go(func() error {
			rows, err := s.repo.ListTransactions(gctx, scope, domain.TransactionQuery{Unowned: true})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				s.LogWarn(ctx, "Failed to list unowned transactions", slog.String("error", err.Error()))
				return nil
			}
			unowned = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := analytics.Merge(owned, unowned)
	analytics.SortByDateDesc(merged)

	s.LogDebug(ctx, "Fetched transactions",
		slog.Int("owned", len(owned)),
		slog.Int("unowned", len(unowned)),
		slog.Int("merged", len(merged)))
	return merged, nil
}

// CreateTransaction validates the form and inserts one row owned by the session.
func (s *transactionService) CreateTransaction(ctx context.Context, session domain.Session, in domain.TransactionInput) (*domain.Transaction, error) {
	scope := session.Scope()
	if scope.OwnerIdentity == "" {
		return nil, apperrors.NewUnauthorizedError("No identity available for the signed-in user")
	}

	txn, err := s.buildTransaction(in)
	if err != nil {
		s.LogWarn(ctx, "Rejected transaction input", slog.String("error", err.Error()))
		return nil, err
	}
	owner := scope.OwnerIdentity
	txn.OwnerIdentity = &owner

	created, err := s.repo.InsertTransaction(ctx, scope, txn)
	if err != nil {
		s.LogError(ctx, err, "Failed to insert transaction")
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction created", slog.String("transaction_id", created.ID))
	s.announce(ctx, domain.ChangeInsert, owner, created.ID)
	return created, nil
}

// UpdateTransaction overwrites every editable field of the row. The amount is checked before any store call.
func (s *transactionService) UpdateTransaction(ctx context.Context, session domain.Session, id string, in domain.TransactionInput) (*domain.Transaction, error) {
	scope := session.Scope()
	if scope.OwnerIdentity == "" {
		return nil, apperrors.NewUnauthorizedError("No identity available for the signed-in user")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewBadRequestError("transaction id is required")
	}

	txn, err := s.buildTransaction(in)
	if err != nil {
		s.LogWarn(ctx, "Rejected transaction input", slog.String("transaction_id", id), slog.String("error", err.Error()))
		return nil, err
	}
	// Ownership is not an editable field; unowned rows stay unowned until claimed.
	txn.ID = id

	updated, err := s.repo.UpdateTransaction(ctx, scope, txn)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("transaction not found")
		}
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", id))
		return nil, fmt.Errorf("failed to update transaction %s: %w", id, err)
	}

	s.LogInfo(ctx, "Transaction updated", slog.String("transaction_id", id))
	s.announce(ctx, domain.ChangeUpdate, scope.OwnerIdentity, id)
	return updated, nil
}

// DeleteTransaction removes the row once the caller has confirmed.
func (s *transactionService) DeleteTransaction(ctx context.Context, session domain.Session, id string, confirmed bool) error {
	scope := session.Scope()
	if scope.OwnerIdentity == "" {
		return apperrors.NewUnauthorizedError("No identity available for the signed-in user")
	}
	if !confirmed {
		return apperrors.NewConfirmationRequiredError("Deleting a transaction must be confirmed")
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.NewBadRequestError("transaction id is required")
	}

	if err := s.repo.DeleteTransaction(ctx, scope, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("transaction not found")
		}
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", id))
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}

	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", id))
	s.announce(ctx, domain.ChangeDelete, scope.OwnerIdentity, id)
	return nil
}

// buildTransaction validates the form fields and converts them to a domain.Transaction.
func (s *transactionService) buildTransaction(in domain.TransactionInput) (domain.Transaction, error) {
	in.Establishment = strings.TrimSpace(in.Establishment)
	in.Category = strings.TrimSpace(in.Category)
	in.Date = strings.TrimSpace(in.Date)
	in.Amount = strings.TrimSpace(in.Amount)

	if err := s.validate.Struct(in); err != nil {
		return domain.Transaction{}, apperrors.NewAppError(http.StatusBadRequest, validationMessage(err), apperrors.ErrValidation)
	}

	kind, ok := domain.ParseKind(in.Kind)
	if !ok {
		return domain.Transaction{}, apperrors.NewBadRequestError("kind must be 'expense' or 'income'")
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	when, ok := s.normalizer.Normalize(in.Date)
	if !ok {
		return domain.Transaction{}, apperrors.NewBadRequestError("invalid date")
	}

	txn := domain.Transaction{
		OccurredAt:    &when,
		RawDate:       in.Date,
		Establishment: in.Establishment,
		Amount:        decimal.NewNullDecimal(amount),
		Kind:          kind,
		Category:      in.Category,
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		txn.Notes = &notes
	}
	return txn, nil
}

// ParseAmount reads a finite, non-negative decimal. A lone comma is taken as the decimal separator.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, apperrors.NewBadRequestError("invalid amount")
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, apperrors.NewBadRequestError("invalid amount: must not be negative")
	}
	return amount, nil
}

// announce publishes a refresh after the grace delay so readers see the write.
func (s *transactionService) announce(ctx context.Context, op domain.ChangeOp, owner, id string) {
	if s.publisher == nil {
		return
	}
	ev := domain.ChangeEvent{Op: op, OwnerIdentity: owner, TransactionID: id, At: s.now()}
	if s.graceDelay <= 0 {
		s.publisher.PublishChange(ev)
		return
	}
	logger := s.GetLogger(ctx)
	time.AfterFunc(s.graceDelay, func() {
		logger.Debug("Publishing refresh", slog.String("op", string(op)), slog.String("transaction_id", id))
		s.publisher.PublishChange(ev)
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid transaction"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " is too long"
	default:
		return field + " is invalid"
	}
}

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard/internal/core/services"
	"github.com/SscSPs/finance_dashboard/internal/utils/dates"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ingestFields struct {
	Date          string `validate:"required"`
	Establishment string `validate:"required,max=255"`
	Kind          string `validate:"required"`
	Category      string `validate:"required,max=100"`
}

// Processor stores ingested transactions.
type Processor struct {
	repo       portsrepo.TransactionWriter
	normalizer *dates.Normalizer
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewProcessor creates a processor writing to repo.
// Open dashboards learn about new rows from the store's change feed.
func NewProcessor(repo portsrepo.TransactionWriter, normalizer *dates.Normalizer, logger *slog.Logger) *Processor {
	if normalizer == nil {
		normalizer = dates.NewNormalizer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		repo:       repo,
		normalizer: normalizer,
		validate:   validator.New(),
		logger:     logger.With("component", "ingest"),
	}
}

// Handle validates msg and inserts one row. Validation failures wrap ErrInvalidMessage.
// The source date is stored as received; unreadable dates are kept and left out of date logic later.
func (p *Processor) Handle(ctx context.Context, msg *TransactionMessage) error {
	fields := ingestFields{
		Date:          strings.TrimSpace(msg.Date),
		Establishment: strings.TrimSpace(msg.Establishment),
		Kind:          strings.TrimSpace(msg.Kind),
		Category:      strings.TrimSpace(msg.Category),
	}
	if err := p.validate.Struct(fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	kind, ok := domain.ParseKind(fields.Kind)
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, msg.Kind)
	}

	amount := decimal.NullDecimal{}
	if strings.TrimSpace(msg.Amount) != "" {
		v, err := services.ParseAmount(msg.Amount)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		amount = decimal.NewNullDecimal(v)
	}

	txn := domain.Transaction{
		RawDate:       fields.Date,
		Establishment: fields.Establishment,
		Amount:        amount,
		Kind:          kind,
		Category:      fields.Category,
	}
	if when, ok := p.normalizer.NormalizeString(fields.Date); ok {
		txn.OccurredAt = &when
	} else {
		p.logger.WarnContext(ctx, "Storing transaction with unreadable date", "date", fields.Date)
	}
	if notes := strings.TrimSpace(msg.Notes); notes != "" {
		txn.Notes = &notes
	}
	if msg.Owner != "" {
		owner := msg.Owner
		txn.OwnerIdentity = &owner
	}

	created, err := p.repo.InsertTransaction(ctx, domain.Scope{OwnerIdentity: msg.Owner}, txn)
	if err != nil {
		return fmt.Errorf("insert ingested transaction: %w", err)
	}

	p.logger.InfoContext(ctx, "Ingested transaction", "transaction_id", created.ID, "owned", msg.Owner != "")
	return nil
}

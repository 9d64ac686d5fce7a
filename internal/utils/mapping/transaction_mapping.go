package mapping

import (
	"strings"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"github.com/SscSPs/finance_dashboard/internal/models"
	"github.com/SscSPs/finance_dashboard/internal/utils/dates"
)

// ToModelTransaction converts a domain Transaction to its row form. Kinds are written with their legacy values.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	m := models.Transaction{
		ID:            d.ID,
		Owner:         d.OwnerIdentity,
		Establishment: strPtr(d.Establishment),
		Amount:        d.Amount,
		Notes:         d.Notes,
		Kind:          strPtr(d.Kind.Legacy()),
		Category:      strPtr(d.Category),
	}
	when := d.RawDate
	if when == "" && d.OccurredAt != nil {
		when = d.OccurredAt.Format("2006-01-02")
	}
	m.When = strPtr(when)
	if d.CreatedAt != nil {
		m.CreatedAt = *d.CreatedAt
	}
	return m
}

// ToDomainTransaction converts a row to a domain Transaction. The date comes from quando when
// present and from created_at otherwise.
func ToDomainTransaction(m models.Transaction, n *dates.Normalizer) domain.Transaction {
	d := domain.Transaction{
		ID:            m.ID,
		Establishment: deref(m.Establishment),
		Amount:        m.Amount,
		Category:      deref(m.Category),
		Notes:         m.Notes,
	}
	d.Kind, _ = domain.ParseKind(deref(m.Kind))

	if m.Owner != nil && *m.Owner != "" {
		owner := *m.Owner
		d.OwnerIdentity = &owner
	}
	if !m.CreatedAt.IsZero() {
		created := m.CreatedAt
		d.CreatedAt = &created
	}

	d.RawDate = strings.TrimSpace(deref(m.When))
	if d.RawDate == "" {
		if d.CreatedAt != nil {
			d.OccurredAt = d.CreatedAt
			d.RawDate = d.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		return d
	}
	if t, ok := n.NormalizeString(d.RawDate); ok {
		d.OccurredAt = &t
	}
	return d
}

// ToDomainTransactionSlice converts rows to domain Transactions.
func ToDomainTransactionSlice(ms []models.Transaction, n *dates.Normalizer) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m, n)
	}
	return ds
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

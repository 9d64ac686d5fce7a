// Package analytics holds the pure pipeline that turns fetched transactions into the dashboard view.
package analytics

import (
	"strings"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
)

// Apply returns the transactions matching every predicate of f, preserving order.
// Rows without a usable date fail any concrete month or year but pass "all".
func Apply(txns []domain.Transaction, f domain.Filter) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if Matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether t passes all four predicates.
func Matches(t domain.Transaction, f domain.Filter) bool {
	return matchMonth(t, f) && matchYear(t, f) && matchKind(t, f) && matchCategory(t, f)
}

func matchMonth(t domain.Transaction, f domain.Filter) bool {
	if f.Month == nil {
		return true
	}
	return t.OccurredAt != nil && int(t.OccurredAt.Month()) == *f.Month
}

func matchYear(t domain.Transaction, f domain.Filter) bool {
	if f.Year == nil {
		return true
	}
	return t.OccurredAt != nil && t.OccurredAt.Year() == *f.Year
}

func matchKind(t domain.Transaction, f domain.Filter) bool {
	if f.Kind == "" {
		return true
	}
	return strings.EqualFold(string(t.Kind), string(f.Kind))
}

func matchCategory(t domain.Transaction, f domain.Filter) bool {
	if f.Category == "" {
		return true
	}
	return strings.EqualFold(t.Category, f.Category)
}

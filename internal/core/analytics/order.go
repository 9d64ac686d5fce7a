package analytics

import (
	"sort"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
)

// Merge concatenates the lists and collapses duplicate ids, keeping the first occurrence.
func Merge(lists ...[]domain.Transaction) []domain.Transaction {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	all := make([]domain.Transaction, 0, n)
	for _, l := range lists {
		all = append(all, l...)
	}
	return Dedupe(all)
}

// Dedupe drops every transaction whose id was already seen.
func Dedupe(txns []domain.Transaction) []domain.Transaction {
	seen := make(map[string]struct{}, len(txns))
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SortByDateDesc orders newest first in place. Undated rows go last; ties keep their order.
func SortByDateDesc(txns []domain.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		a, b := txns[i].OccurredAt, txns[j].OccurredAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

package analytics

import (
	"sort"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Facets computes the selector options from the unfiltered set so they do not shrink as filters narrow.
func Facets(txns []domain.Transaction, now time.Time, tag language.Tag) domain.Facets {
	return domain.Facets{
		Years:      Years(txns, now),
		Categories: Categories(txns, tag),
	}
}

// Years returns the distinct years present, newest first. An empty result becomes the current year.
func Years(txns []domain.Transaction, now time.Time) []int {
	seen := make(map[int]struct{})
	for _, t := range txns {
		if t.OccurredAt != nil {
			seen[t.OccurredAt.Year()] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return []int{now.Year()}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Categories returns the distinct non-empty categories, case-sensitive, in the locale's collation order.
func Categories(txns []domain.Transaction, tag language.Tag) []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, t := range txns {
		if t.Category == "" {
			continue
		}
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		categories = append(categories, t.Category)
	}

	// Collators keep internal buffers, so one per call.
	collate.New(tag).SortStrings(categories)
	return categories
}

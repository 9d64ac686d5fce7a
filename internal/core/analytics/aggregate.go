package analytics

import (
	"sort"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CategoryTotals sums expense amounts per category. Categories without expenses are omitted.
func CategoryTotals(txns []domain.Transaction) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if t.Kind != domain.KindExpense {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.AmountOrZero())
	}
	return totals
}

// CategoryShare is one slice of the expense breakdown.
type CategoryShare struct {
	Category string
	Amount   decimal.Decimal
	Percent  decimal.Decimal // Of total expense, rounded to two places
}

// RankCategories orders category totals by amount descending, then name, and attaches each share.
func RankCategories(totals map[string]decimal.Decimal) []CategoryShare {
	sum := decimal.Zero
	shares := make([]CategoryShare, 0, len(totals))
	for c, amount := range totals {
		sum = sum.Add(amount)
		shares = append(shares, CategoryShare{Category: c, Amount: amount})
	}

	sort.Slice(shares, func(i, j int) bool {
		if cmp := shares[i].Amount.Cmp(shares[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return shares[i].Category < shares[j].Category
	})

	for i := range shares {
		if sum.IsZero() {
			shares[i].Percent = decimal.Zero
			continue
		}
		shares[i].Percent = shares[i].Amount.Div(sum).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return shares
}

// MonthlyTotals buckets dated transactions by short month label and returns them in calendar order.
// The same month of different years shares a bucket. Undated rows are dropped from this view only.
func MonthlyTotals(txns []domain.Transaction, labels MonthLabels) []domain.MonthlyTotal {
	type bucket struct {
		month int
		total domain.MonthlyTotal
	}
	buckets := make(map[string]*bucket)

	for _, t := range txns {
		if t.OccurredAt == nil {
			continue
		}
		month := int(t.OccurredAt.Month())
		label := labels.Short(month)
		b, ok := buckets[label]
		if !ok {
			b = &bucket{month: month, total: domain.MonthlyTotal{
				Label:   label,
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			}}
			buckets[label] = b
		}
		switch t.Kind {
		case domain.KindExpense:
			b.total.Expense = b.total.Expense.Add(t.AmountOrZero())
		case domain.KindIncome:
			b.total.Income = b.total.Income.Add(t.AmountOrZero())
		}
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].month < ordered[j].month })

	out := make([]domain.MonthlyTotal, len(ordered))
	for i, b := range ordered {
		out[i] = b.total
	}
	return out
}

// Totals computes the running income, expense and balance. Missing amounts count as zero.
func Totals(txns []domain.Transaction) domain.Totals {
	income := decimal.Zero
	expense := decimal.Zero
	for _, t := range txns {
		switch t.Kind {
		case domain.KindIncome:
			income = income.Add(t.AmountOrZero())
		case domain.KindExpense:
			expense = expense.Add(t.AmountOrZero())
		}
	}
	return domain.Totals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

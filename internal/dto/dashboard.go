package dto

import (
	"github.com/SscSPs/finance_dashboard/internal/core/analytics"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"github.com/SscSPs/finance_dashboard/internal/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// DashboardParams are the query parameters of GET /dashboard.
// Omitted month and year mean the current ones; "all" disables the filter.
type DashboardParams struct {
	Month    *string `form:"month"`
	Year     *string `form:"year"`
	Kind     string  `form:"kind"`
	Category string  `form:"category"`
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"pageSize"`
}

// FilterResponse echoes the applied filter in its wire form.
type FilterResponse struct {
	Month    string `json:"month"`
	Year     string `json:"year"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
}

// MoneyResponse is an amount with its display form.
type MoneyResponse struct {
	Value     decimal.Decimal `json:"value"`
	Formatted string          `json:"formatted"`
}

// TotalsResponse holds the three summary cards.
type TotalsResponse struct {
	Income  MoneyResponse `json:"income"`
	Expense MoneyResponse `json:"expense"`
	Balance MoneyResponse `json:"balance"`
}

// CategoryTotalResponse is one slice of the expense pie chart.
type CategoryTotalResponse struct {
	Category string          `json:"category"`
	Amount   MoneyResponse   `json:"amount"`
	Percent  decimal.Decimal `json:"percent"`
}

// MonthlyTotalResponse is one bar pair of the monthly chart.
type MonthlyTotalResponse struct {
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// PageResponse is the transaction table page.
type PageResponse struct {
	Items      []TransactionResponse `json:"items"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalItems int                   `json:"totalItems"`
	TotalPages int                   `json:"totalPages"`
}

// DashboardResponse is everything one dashboard view renders.
type DashboardResponse struct {
	Filter         FilterResponse          `json:"filter"`
	PeriodLabel    string                  `json:"periodLabel"`
	Totals         TotalsResponse          `json:"totals"`
	CategoryTotals []CategoryTotalResponse `json:"categoryTotals"`
	Monthly        []MonthlyTotalResponse  `json:"monthly"`
	Years          []int                   `json:"years"`
	Categories     []string                `json:"categories"`
	Page           PageResponse            `json:"page"`
	Degraded       bool                    `json:"degraded"`
}

// ClaimResponse reports the ownership backfill.
type ClaimResponse struct {
	Claimed    int  `json:"claimed"`
	AlreadyRun bool `json:"alreadyRun"`
}

func money(v decimal.Decimal, tag language.Tag) MoneyResponse {
	return MoneyResponse{Value: v, Formatted: utils.FormatMoney(v, tag)}
}

// ToDashboardResponse converts a domain.Dashboard, formatting money for tag.
func ToDashboardResponse(d domain.Dashboard, tag language.Tag) DashboardResponse {
	resp := DashboardResponse{
		Filter: FilterResponse{
			Month:    d.Filter.MonthString(),
			Year:     d.Filter.YearString(),
			Kind:     d.Filter.KindString(),
			Category: d.Filter.CategoryString(),
		},
		PeriodLabel: d.PeriodLabel,
		Totals: TotalsResponse{
			Income:  money(d.Totals.Income, tag),
			Expense: money(d.Totals.Expense, tag),
			Balance: money(d.Totals.Balance, tag),
		},
		CategoryTotals: []CategoryTotalResponse{},
		Monthly:        make([]MonthlyTotalResponse, len(d.Monthly)),
		Years:          d.Facets.Years,
		Categories:     d.Facets.Categories,
		Page: PageResponse{
			Items:      ToTransactionResponses(d.Page.Items),
			Page:       d.Page.Page,
			PageSize:   d.Page.PageSize,
			TotalItems: d.Page.TotalItems,
			TotalPages: d.Page.TotalPages,
		},
		Degraded: d.Degraded,
	}
	for _, share := range analytics.RankCategories(d.CategoryTotals) {
		resp.CategoryTotals = append(resp.CategoryTotals, CategoryTotalResponse{
			Category: share.Category,
			Amount:   money(share.Amount, tag),
			Percent:  share.Percent,
		})
	}
	for i, m := range d.Monthly {
		resp.Monthly[i] = MonthlyTotalResponse(m)
	}
	if resp.Years == nil {
		resp.Years = []int{}
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	return resp
}

// ToClaimResponse converts a domain.ClaimResult to ClaimResponse DTO
func ToClaimResponse(r *domain.ClaimResult) ClaimResponse {
	return ClaimResponse{Claimed: r.Claimed, AlreadyRun: r.AlreadyRun}
}

package domain

import "github.com/shopspring/decimal"

// Totals are the summary cards of the dashboard.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"` // Income minus expense
}

// MonthlyTotal is one bucket of the income/expense bar chart.
type MonthlyTotal struct {
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Facets are the options offered by the filter selectors.
type Facets struct {
	Years      []int    `json:"years"`
	Categories []string `json:"categories"`
}

// Page is one slice of the filtered, sorted transaction list.
type Page struct {
	Items      []Transaction `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalItems int           `json:"totalItems"`
	TotalPages int           `json:"totalPages"`
}

// Dashboard is everything the browser needs to render one view.
type Dashboard struct {
	Filter         Filter
	PeriodLabel    string
	Totals         Totals
	CategoryTotals map[string]decimal.Decimal
	Monthly        []MonthlyTotal
	Facets         Facets
	Page           Page
	Degraded       bool // The store could not be read; everything above is empty
}

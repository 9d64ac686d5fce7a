package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/core/analytics"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/utils/pagination"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// dashboardService runs the fetch → filter → aggregate → paginate pipeline.
type dashboardService struct {
	BaseService
	transactions portssvc.TransactionReaderSvc
	locale       language.Tag
	labels       analytics.MonthLabels
	pageSize     int
	now          func() time.Time
}

// NewDashboardService creates the dashboard service for the given locale and default page size.
func NewDashboardService(transactions portssvc.TransactionReaderSvc, locale language.Tag, pageSize int) portssvc.DashboardSvc {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	return &dashboardService{
		transactions: transactions,
		locale:       locale,
		labels:       analytics.LabelsFor(locale),
		pageSize:     pageSize,
		now:          time.Now,
	}
}

var _ portssvc.DashboardSvc = (*dashboardService)(nil)

// BuildDashboard assembles one view. Facets come from the unfiltered set, everything else from the filtered one.
func (s *dashboardService) BuildDashboard(ctx context.Context, session domain.Session, q portssvc.DashboardQuery) domain.Dashboard {
	now := s.now()

	all, err := s.transactions.FetchTransactions(ctx, session)
	degraded := false
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions, rendering empty dashboard")
		all = nil
		degraded = true
	}

	filtered := analytics.Apply(all, q.Filter)

	size := q.PageSize
	if size < 1 {
		size = s.pageSize
	}
	items, window := pagination.Paginate(filtered, q.Page, size)

	d := domain.Dashboard{
		Filter:         q.Filter,
		PeriodLabel:    analytics.PeriodLabel(q.Filter, now, s.labels),
		Totals:         analytics.Totals(filtered),
		CategoryTotals: analytics.CategoryTotals(filtered),
		Monthly:        analytics.MonthlyTotals(filtered, s.labels),
		Facets:         analytics.Facets(all, now, s.locale),
		Page: domain.Page{
			Items:      items,
			Page:       window.Page,
			PageSize:   window.PageSize,
			TotalItems: window.TotalItems,
			TotalPages: window.TotalPages,
		},
		Degraded: degraded,
	}
	if d.CategoryTotals == nil {
		d.CategoryTotals = map[string]decimal.Decimal{}
	}

	s.LogDebug(ctx, "Dashboard built",
		slog.Int("total", len(all)),
		slog.Int("filtered", len(filtered)),
		slog.Bool("degraded", degraded))
	return d
}

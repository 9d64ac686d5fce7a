package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/dto"
	"github.com/SscSPs/finance_dashboard/internal/handlers"
	"github.com/SscSPs/finance_dashboard/internal/middleware"
	"github.com/SscSPs/finance_dashboard/internal/platform/session"
	"github.com/SscSPs/finance_dashboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newDashboardRouter(t *testing.T, svc *MockDashboardService) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	secret := "dashboard-test-secret"

	store := session.NewStore(10, time.Hour)
	sess := domain.Session{ID: "sess-d", Principal: domain.Principal{ID: "user-d"}, OwnerIdentity: "owner-d", ExpiresAt: time.Now().Add(time.Hour)}
	store.SaveSession(sess)

	token, err := utils.GenerateSessionJWT(sess.ID, sess.Principal.ID, secret, time.Now().Add(time.Hour), "fd-test")
	require.NoError(t, err)

	r := gin.New()
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(secret, store))
	now := func() time.Time { return time.Date(2024, time.July, 14, 10, 0, 0, 0, time.UTC) }
	handlers.RegisterDashboardRoutes(v1, svc, language.BrazilianPortuguese, now)
	return r, token
}

func getDashboard(r *gin.Engine, token, query string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/dashboard"+query, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDashboard_DefaultsToCurrentMonth(t *testing.T) {
	svc := new(MockDashboardService)
	r, token := newDashboardRouter(t, svc)

	svc.On("BuildDashboard", mock.Anything, mock.Anything, mock.MatchedBy(func(q portssvc.DashboardQuery) bool {
		return q.Filter.Month != nil && *q.Filter.Month == 7 &&
			q.Filter.Year != nil && *q.Filter.Year == 2024 &&
			q.Filter.Kind == "" && q.Page == 1
	})).Return(domain.Dashboard{PeriodLabel: "de Julho/2024"}).Once()

	w := getDashboard(r, token, "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data dto.DashboardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "de Julho/2024", body.Data.PeriodLabel)
	assert.Equal(t, "7", body.Data.Filter.Month)
	assert.Empty(t, body.Data.CategoryTotals)
	assert.NotNil(t, body.Data.Years)
	svc.AssertExpectations(t)
}

func TestDashboard_AllFiltersAndSummary(t *testing.T) {
	svc := new(MockDashboardService)
	r, token := newDashboardRouter(t, svc)

	d := domain.Dashboard{
		PeriodLabel: "overall",
		Totals: domain.Totals{
			Income:  decimal.NewFromInt(1000),
			Expense: decimal.RequireFromString("1234.5"),
			Balance: decimal.RequireFromString("-234.5"),
		},
		CategoryTotals: map[string]decimal.Decimal{
			"Transporte":  decimal.NewFromInt(300),
			"Alimentação": decimal.NewFromInt(900),
		},
		Monthly: []domain.MonthlyTotal{{Label: "mar.", Income: decimal.NewFromInt(1000), Expense: decimal.NewFromInt(1200)}},
		Facets:  domain.Facets{Years: []int{2024, 2023}, Categories: []string{"Alimentação", "Transporte"}},
		Page:    domain.Page{Page: 2, PageSize: 8, TotalItems: 9, TotalPages: 2},
	}
	svc.On("BuildDashboard", mock.Anything, mock.Anything, mock.MatchedBy(func(q portssvc.DashboardQuery) bool {
		return q.Filter.Month == nil && q.Filter.Year == nil && q.Filter.Kind == domain.KindExpense && q.Page == 2
	})).Return(d).Once()

	w := getDashboard(r, token, "?month=all&year=all&kind=despesa&page=2")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data dto.DashboardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "expense", body.Data.Filter.Kind)
	assert.Equal(t, "-R$ 234,50", body.Data.Totals.Balance.Formatted)
	assert.Equal(t, "R$ 1.234,50", body.Data.Totals.Expense.Formatted)
	require.Len(t, body.Data.CategoryTotals, 2)
	assert.Equal(t, "Alimentação", body.Data.CategoryTotals[0].Category)
	assert.True(t, decimal.NewFromInt(75).Equal(body.Data.CategoryTotals[0].Percent))
	assert.Equal(t, []int{2024, 2023}, body.Data.Years)
	assert.Equal(t, 2, body.Data.Page.TotalPages)
}

func TestDashboard_InvalidMonth(t *testing.T) {
	svc := new(MockDashboardService)
	r, token := newDashboardRouter(t, svc)

	w := getDashboard(r, token, "?month=13")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "BuildDashboard", mock.Anything, mock.Anything, mock.Anything)
}

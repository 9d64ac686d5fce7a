package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/dto"
	"github.com/SscSPs/finance_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

type dashboardHandler struct {
	dashboardService portssvc.DashboardSvc
	locale           language.Tag
	now              func() time.Time
}

// RegisterDashboardRoutes registers GET /dashboard. now provides the current month for omitted filters.
func RegisterDashboardRoutes(rg *gin.RouterGroup, ds portssvc.DashboardSvc, locale language.Tag, now func() time.Time) {
	h := &dashboardHandler{dashboardService: ds, locale: locale, now: now}
	rg.GET("/dashboard", h.getDashboard)
}

// getDashboard godoc
// @Summary Dashboard view
// @Description Totals, category breakdown, monthly chart, filter options and one table page.
// @Tags dashboard
// @Produce json
// @Param month query string false "1-12 or all; current month when omitted"
// @Param year query string false "YYYY or all; current year when omitted"
// @Param kind query string false "expense, income or all"
// @Param category query string false "Category or all"
// @Param page query int false "1-based page"
// @Param pageSize query int false "Rows per page"
// @Success 200 {object} dto.DashboardResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /dashboard [get]
func (h *dashboardHandler) getDashboard(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.DashboardParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	defaults := domain.DefaultFilter(h.now())
	month, year := defaults.MonthString(), defaults.YearString()
	if params.Month != nil {
		month = *params.Month
	}
	if params.Year != nil {
		year = *params.Year
	}

	filter, err := domain.ParseFilter(month, year, params.Kind, params.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	d := h.dashboardService.BuildDashboard(c.Request.Context(), session, portssvc.DashboardQuery{
		Filter:   filter,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	c.JSON(http.StatusOK, gin.H{"data": dto.ToDashboardResponse(d, h.locale)})
}

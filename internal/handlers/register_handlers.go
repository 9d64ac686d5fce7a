package handlers

import (
	"fmt"
	"time"

	"github.com/SscSPs/finance_dashboard/cmd/docs"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/middleware"
	"github.com/SscSPs/finance_dashboard/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/text/language"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	sessions portsrepo.SessionStore,
) error {
	loginLimiter, err := middleware.NewLoginLimiter(cfg.LoginRateLimit)
	if err != nil {
		return fmt.Errorf("invalid LOGIN_RATE_LIMIT %q: %w", cfg.LoginRateLimit, err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		locale = language.BrazilianPortuguese
	}

	requireSession := middleware.AuthMiddleware(cfg.SigningSecret(), sessions)

	r.GET("/health", getHealth)

	// Public sign-in routes plus the session routes of the auth group
	registerAuthRoutes(r, services, middleware.RateLimit(loginLimiter), requireSession)

	setupAPIV1Routes(r, services, requireSession, locale, func() time.Time { return time.Now().In(loc) })

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	requireSession gin.HandlerFunc,
	locale language.Tag,
	now func() time.Time,
) {
	registerCategoryRoutes(r.Group("/api/v1"))

	v1 := r.Group("/api/v1", requireSession)
	RegisterTransactionRoutes(v1, services.Transaction, services.Reconciliation)
	RegisterDashboardRoutes(v1, services.Dashboard, locale, now)
	RegisterEventRoutes(v1, services.Realtime)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

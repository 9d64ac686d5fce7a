package services

import (
	"log/slog"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/core/identity"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/platform/config"
	"github.com/SscSPs/finance_dashboard/internal/utils/dates"
	"golang.org/x/text/language"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, sessions portsrepo.SessionStore, hub *RealtimeHub) (*portssvc.ServiceContainer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		slog.Warn("Invalid LOCALE, defaulting to pt-BR", slog.String("locale", cfg.Locale))
		locale = language.BrazilianPortuguese
	}
	now := func() time.Time { return time.Now().In(loc) }

	container := &portssvc.ServiceContainer{Realtime: hub}

	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		WithPublisher(hub),
		WithNormalizer(dates.NewNormalizer(loc)),
		WithIncludeUnclaimed(cfg.IncludeUnclaimed),
		WithRefreshGraceDelay(cfg.RefreshGraceDelay),
	)

	dashboard := NewDashboardService(container.Transaction, locale, cfg.PageSize).(*dashboardService)
	dashboard.now = now
	container.Dashboard = dashboard

	container.Reconciliation = NewReconciliationService(repos.TransactionRepo, sessions, hub)

	auth := NewAuthService(repos.AuthProvider, sessions, identity.Default(), hub, TokenConfig{
		Secret: cfg.SigningSecret(),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTExpiryDuration,
	})
	container.Auth = auth

	container.Google = NewGoogleSignInService(cfg, auth)

	return container, nil
}

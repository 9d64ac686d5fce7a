package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"github.com/SscSPs/finance_dashboard/internal/core/identity"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/utils"
	"github.com/google/uuid"
)

// User-facing auth messages.
const (
	msgMissingCredentials = "Informe o e-mail e a senha cadastrados."
	msgInvalidCredentials = "Credenciais inválidas. Verifique o e-mail e a senha cadastrados."
	msgSessionExpired     = "Sessão expirada. Entre novamente."
)

// TokenConfig controls the session tokens the server issues.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// authService implements portssvc.AuthSvcFacade on top of an AuthProvider.
type authService struct {
	BaseService
	provider portsrepo.AuthProvider
	sessions portsrepo.SessionStore
	resolver *identity.Resolver
	realtime portssvc.RealtimeSvc
	tokens   TokenConfig
	now      func() time.Time
}

// NewAuthService creates the auth service. realtime may be nil.
func NewAuthService(provider portsrepo.AuthProvider, sessions portsrepo.SessionStore, resolver *identity.Resolver, realtime portssvc.RealtimeSvc, tokens TokenConfig) *authService {
	if resolver == nil {
		resolver = identity.Default()
	}
	return &authService{
		provider: provider,
		sessions: sessions,
		resolver: resolver,
		realtime: realtime,
		tokens:   tokens,
		now:      time.Now,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login checks the form, signs in with the provider and opens a server session.
func (s *authService) Login(ctx context.Context, email, password string) (*portssvc.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, apperrors.NewBadRequestError(msgMissingCredentials)
	}

	creds, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			s.LogInfo(ctx, "Sign-in rejected", slog.String("email", email))
			return nil, apperrors.NewUnauthorizedError(msgInvalidCredentials)
		}
		s.LogError(ctx, err, "Sign-in failed")
		return nil, apperrors.NewAppError(apperrors.StatusFor(err), "Não foi possível autenticar. Tente novamente em instantes.", err)
	}

	return s.openSession(ctx, *creds)
}

// openSession resolves the owner identity, stores the session and signs its token.
func (s *authService) openSession(ctx context.Context, creds domain.Credentials) (*portssvc.AuthResult, error) {
	now := s.now()

	owner, ok := s.resolver.Resolve(creds.Principal)
	if !ok {
		// Rows written by this dashboard fall back to the account id.
		owner = creds.Principal.ID
		s.LogWarn(ctx, "No identity claim on principal, using account id", slog.String("user_id", creds.Principal.ID))
	}
	if owner == "" {
		return nil, apperrors.NewUnauthorizedError("Não foi possível identificar o usuário autenticado.")
	}

	expiresAt := now.Add(s.tokens.TTL)
	if !creds.ExpiresAt.IsZero() && creds.ExpiresAt.Before(expiresAt) {
		expiresAt = creds.ExpiresAt
	}

	session := domain.Session{
		ID:                  uuid.NewString(),
		Principal:           creds.Principal,
		OwnerIdentity:       owner,
		ProviderAccessToken: creds.AccessToken,
		ExpiresAt:           expiresAt,
		CreatedAt:           now,
	}

	token, err := utils.GenerateSessionJWT(session.ID, session.Principal.ID, s.tokens.Secret, expiresAt, s.tokens.Issuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign session token")
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.sessions.SaveSession(session)
	s.LogInfo(ctx, "Session opened",
		slog.String("user_id", session.Principal.ID),
		slog.String("session_id", session.ID))

	if s.realtime != nil {
		s.realtime.PublishAuth(owner, domain.AuthEvent{SignedIn: true, SessionID: session.ID, At: now})
	}

	return &portssvc.AuthResult{AccessToken: token, ExpiresAt: expiresAt, Session: session}, nil
}

// Logout revokes the session. The provider sign-out is best effort.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	session, ok := s.sessions.GetSession(sessionID)
	if !ok {
		return apperrors.NewUnauthorizedError(msgSessionExpired)
	}

	if session.ProviderAccessToken != "" {
		if err := s.provider.SignOut(ctx, session.ProviderAccessToken); err != nil {
			s.LogWarn(ctx, "Provider sign-out failed", slog.String("error", err.Error()))
		}
	}

	s.sessions.DeleteSession(sessionID)
	s.LogInfo(ctx, "Session closed", slog.String("session_id", sessionID))

	if s.realtime != nil {
		s.realtime.PublishAuth(session.OwnerIdentity, domain.AuthEvent{SignedIn: false, SessionID: sessionID, At: s.now()})
	}
	return nil
}

// CurrentSession returns the live session.
func (s *authService) CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, ok := s.sessions.GetSession(sessionID)
	if !ok {
		return nil, apperrors.NewUnauthorizedError(msgSessionExpired)
	}
	return &session, nil
}

// CurrentUser asks the provider who the session belongs to. Sessions without a provider token
// answer from the stored principal.
func (s *authService) CurrentUser(ctx context.Context, sessionID string) (*domain.Principal, error) {
	session, ok := s.sessions.GetSession(sessionID)
	if !ok {
		return nil, apperrors.NewUnauthorizedError(msgSessionExpired)
	}
	if session.ProviderAccessToken == "" {
		p := session.Principal
		return &p, nil
	}

	p, err := s.provider.GetUser(ctx, session.ProviderAccessToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			s.sessions.DeleteSession(sessionID)
			return nil, apperrors.NewUnauthorizedError(msgSessionExpired)
		}
		s.LogError(ctx, err, "Failed to get current user from provider")
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return p, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/platform/config"
	"github.com/SscSPs/finance_dashboard/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// idTokenValidator matches idtoken.Validate.
type idTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// codeExchanger trades an authorization code for tokens.
type codeExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

type googleSignInService struct {
	BaseService
	oauth    codeExchanger
	clientID string
	validate idTokenValidator
	auth     *authService
}

// NewGoogleSignInService returns nil when Google is not configured.
func NewGoogleSignInService(cfg *config.Config, auth *authService) portssvc.GoogleSignInSvc {
	if !cfg.GoogleEnabled() {
		return nil
	}
	return &googleSignInService{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		clientID: cfg.GoogleClientID,
		validate: idtoken.Validate,
		auth:     auth,
	}
}

// LoginURL builds the consent URL with a fresh state value.
func (s *googleSignInService) LoginURL(ctx context.Context) (string, string, error) {
	state, err := utils.NewOAuthState()
	if err != nil {
		s.LogError(ctx, err, "Failed to generate OAuth state")
		return "", "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), state, nil
}

// ExchangeCode trades the code for Google tokens, validates the ID token and opens a session.
func (s *googleSignInService) ExchangeCode(ctx context.Context, code string) (*portssvc.AuthResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.NewBadRequestError("Authorization code is required.")
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.LogError(ctx, err, "Failed to exchange authorization code with Google")
		lower := strings.ToLower(err.Error())
		if strings.Contains(lower, "invalid_grant") || strings.Contains(lower, "bad request") {
			return nil, apperrors.NewBadRequestError("Invalid or expired authorization code provided by Google.")
		}
		return nil, apperrors.NewGatewayTimeoutError("Failed to communicate with Google OAuth service.")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, apperrors.NewBadGatewayError("Failed to retrieve ID token from Google.")
	}

	payload, err := s.validate(ctx, rawIDToken, s.clientID)
	if err != nil {
		s.LogWarn(ctx, "Google ID token validation failed", slog.String("error", err.Error()))
		return nil, apperrors.NewUnauthorizedError("Invalid Google ID token.")
	}

	email, _ := payload.Claims["email"].(string)
	if payload.Subject == "" || email == "" {
		return nil, apperrors.NewBadGatewayError("Essential user information missing from Google token.")
	}

	principal := domain.Principal{
		ID:       payload.Subject,
		Email:    email,
		Metadata: payload.Claims,
	}
	s.LogInfo(ctx, "Google ID token validated", slog.String("google_user_id", payload.Subject))

	// Google tokens are not valid against the store; the session runs without a provider token.
	return s.auth.openSession(ctx, domain.Credentials{Principal: principal, ExpiresAt: token.Expiry})
}

package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
)

// gotrueUser is the user object GoTrue returns.
type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	ExpiresAt   int64      `json:"expires_at"`
	User        gotrueUser `json:"user"`
}

// AuthProvider signs users in against the project's GoTrue service.
type AuthProvider struct {
	client *Client
	now    func() time.Time
}

// NewAuthProvider creates the GoTrue provider.
func NewAuthProvider(client *Client) *AuthProvider {
	return &AuthProvider{client: client, now: time.Now}
}

var _ portsrepo.AuthProvider = (*AuthProvider)(nil)

// SignInWithPassword runs the password grant. Rejected credentials map to apperrors.ErrUnauthorized.
func (p *AuthProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.Credentials, error) {
	var resp tokenResponse
	err := p.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		var httpErr *HTTPError
		// GoTrue answers 400 invalid_grant / invalid_credentials for a wrong password.
		if errors.As(err, &httpErr) && (httpErr.Status == http.StatusBadRequest || httpErr.Status == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, httpErr.Message)
		}
		return nil, fmt.Errorf("password sign-in failed: %w", err)
	}
	if resp.AccessToken == "" || resp.User.ID == "" {
		return nil, fmt.Errorf("%w: sign-in response without token or user", apperrors.ErrUpstream)
	}

	creds := &domain.Credentials{
		Principal:   resp.User.principal(),
		AccessToken: resp.AccessToken,
	}
	switch {
	case resp.ExpiresAt > 0:
		creds.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		creds.ExpiresAt = p.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return creds, nil
}

// SignOut revokes the GoTrue session behind accessToken.
func (p *AuthProvider) SignOut(ctx context.Context, accessToken string) error {
	err := p.client.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/v1/logout",
		accessToken: accessToken,
	}, nil)
	if err != nil {
		return fmt.Errorf("sign-out failed: %w", err)
	}
	return nil
}

// GetUser returns the user behind accessToken.
func (p *AuthProvider) GetUser(ctx context.Context, accessToken string) (*domain.Principal, error) {
	if accessToken == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var user gotrueUser
	err := p.client.do(ctx, request{
		method:      http.MethodGet,
		path:        "/auth/v1/user",
		accessToken: accessToken,
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	principal := user.principal()
	return &principal, nil
}

func (u gotrueUser) principal() domain.Principal {
	return domain.Principal{
		ID:       u.ID,
		Email:    u.Email,
		Phone:    u.Phone,
		Metadata: u.UserMetadata,
	}
}

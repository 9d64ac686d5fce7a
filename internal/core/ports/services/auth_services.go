package services

import (
	"context"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
)

// AuthResult is returned after a successful sign-in.
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Session     domain.Session
}

// AuthSvcFacade defines sign-in, sign-out and session lookups.
type AuthSvcFacade interface {
	// Login signs in with email and password and opens a server session.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Logout closes the session and notifies the user's other open streams.
	Logout(ctx context.Context, sessionID string) error

	// CurrentSession returns the live session or apperrors.ErrUnauthorized.
	CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// CurrentUser asks the provider for the session's principal.
	CurrentUser(ctx context.Context, sessionID string) (*domain.Principal, error)
}

// GoogleSignInSvc signs users in with Google.
type GoogleSignInSvc interface {
	// LoginURL returns the consent URL and the CSRF state bound to it.
	LoginURL(ctx context.Context) (url string, state string, err error)

	// ExchangeCode trades an authorization code for a server session.
	ExchangeCode(ctx context.Context, code string) (*AuthResult, error)
}

// Notification is one message on a realtime stream.
type Notification struct {
	Type   string              `json:"type"` // "refresh" or "auth"
	Change *domain.ChangeEvent `json:"change,omitempty"`
	Auth   *domain.AuthEvent   `json:"auth,omitempty"`
}

// Notification types.
const (
	NotificationRefresh = "refresh"
	NotificationAuth    = "auth"
)

// RealtimeSvc fans change and auth events out to open streams.
type RealtimeSvc interface {
	// Subscribe opens a stream for the session until ctx is cancelled.
	Subscribe(ctx context.Context, session domain.Session) (<-chan Notification, error)

	// PublishChange notifies every stream of the event's owner.
	PublishChange(ev domain.ChangeEvent)

	// PublishAuth notifies every stream of owner; each stream compares ev.SessionID with its own.
	PublishAuth(owner string, ev domain.AuthEvent)
}

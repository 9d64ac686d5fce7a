package repositories

import (
	"context"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
)

// AuthProvider is the identity backend that issues provider credentials.
type AuthProvider interface {
	// SignInWithPassword exchanges email and password for provider credentials.
	// Rejected credentials return apperrors.ErrUnauthorized.
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Credentials, error)

	// SignOut revokes the provider session behind accessToken.
	SignOut(ctx context.Context, accessToken string) error

	// GetUser returns the principal behind accessToken as the provider currently sees it.
	GetUser(ctx context.Context, accessToken string) (*domain.Principal, error)
}

// TokenSource returns the provider access token to connect with. Empty means the backend's own key.
type TokenSource func() string

// ChangeSubscriber is a feed of row-level changes for one owner.
type ChangeSubscriber interface {
	// SubscribeChanges streams changes of owner until ctx is cancelled, then closes the channel.
	// token is asked again on every (re)connect.
	SubscribeChanges(ctx context.Context, owner string, token TokenSource) (<-chan domain.ChangeEvent, error)
}

// SessionStore keeps server-side sessions.
type SessionStore interface {
	SaveSession(s domain.Session)
	// GetSession returns false for unknown or expired sessions.
	GetSession(id string) (domain.Session, bool)
	DeleteSession(id string)
	// RecordClaim stores the reconciliation result on the session; false if the session is gone.
	RecordClaim(id string, result domain.ClaimResult) bool
}

// RepositoryProvider holds the store implementations selected at startup.
type RepositoryProvider struct {
	TransactionRepo TransactionRepositoryFacade
	AuthProvider    AuthProvider
	ChangeFeed      ChangeSubscriber
}

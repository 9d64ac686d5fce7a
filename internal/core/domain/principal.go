package domain

import "time"

// Principal is the authenticated user as reported by the auth provider.
type Principal struct {
	ID       string         `json:"id"`
	Email    string         `json:"email,omitempty"`
	Phone    string         `json:"phone,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"` // Free-form user metadata
}

// Session is a server-side login. Its ID doubles as the JWT id.
type Session struct {
	ID                  string       `json:"id"`
	Principal           Principal    `json:"principal"`
	OwnerIdentity       string       `json:"ownerIdentity"`
	ProviderAccessToken string       `json:"-"` // Empty for sign-ins the store provider did not issue
	ExpiresAt           time.Time    `json:"expiresAt"`
	CreatedAt           time.Time    `json:"createdAt"`
	Claim               *ClaimResult `json:"claim,omitempty"` // Set once reconciliation has run for this session
}

// Scope returns the store scope for calls made on behalf of the session.
func (s Session) Scope() Scope {
	return Scope{OwnerIdentity: s.OwnerIdentity, AccessToken: s.ProviderAccessToken}
}

// Scope carries the owner identity and the provider token every store call runs under.
type Scope struct {
	OwnerIdentity string
	AccessToken   string
}

// ClaimResult records the outcome of assigning unowned rows to a session's owner.
type ClaimResult struct {
	Claimed    int       `json:"claimed"`
	RanAt      time.Time `json:"ranAt"`
	AlreadyRun bool      `json:"alreadyRun"`
}

// Credentials is what the provider returns after a successful sign-in.
type Credentials struct {
	Principal   Principal
	AccessToken string
	ExpiresAt   time.Time // Zero when the provider token does not expire
}

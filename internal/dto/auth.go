package dto

import (
	"time"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
)

// LoginRequest represents the email/password sign-in form.
// Both fields are checked by the auth service so its message reaches the user.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the response for a successful sign-in.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Session   SessionResponse `json:"session"`
}

// SessionResponse describes the live session without its provider credentials.
type SessionResponse struct {
	SessionID     string              `json:"sessionId"`
	User          UserResponse        `json:"user"`
	OwnerIdentity string              `json:"ownerIdentity"`
	ExpiresAt     time.Time           `json:"expiresAt"`
	CreatedAt     time.Time           `json:"createdAt"`
	Claim         *domain.ClaimResult `json:"claim,omitempty"`
}

// UserResponse is the principal as reported by the auth provider.
type UserResponse struct {
	UserID   string         `json:"userId"`
	Email    string         `json:"email,omitempty"`
	Phone    string         `json:"phone,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// GoogleLoginURLResponse carries the consent URL and the state the client must send back.
type GoogleLoginURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// ExchangeCodeRequest defines the expected JSON body for the /google/exchange-code endpoint.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// ToLoginResponse converts an AuthResult to LoginResponse DTO
func ToLoginResponse(r *portssvc.AuthResult) LoginResponse {
	return LoginResponse{
		Token:     r.AccessToken,
		ExpiresAt: r.ExpiresAt,
		Session:   ToSessionResponse(r.Session),
	}
}

// ToSessionResponse converts a domain.Session to SessionResponse DTO
func ToSessionResponse(s domain.Session) SessionResponse {
	return SessionResponse{
		SessionID:     s.ID,
		User:          ToUserResponse(s.Principal),
		OwnerIdentity: s.OwnerIdentity,
		ExpiresAt:     s.ExpiresAt,
		CreatedAt:     s.CreatedAt,
		Claim:         s.Claim,
	}
}

// ToUserResponse converts a domain.Principal to UserResponse DTO
func ToUserResponse(p domain.Principal) UserResponse {
	return UserResponse{
		UserID:   p.ID,
		Email:    p.Email,
		Phone:    p.Phone,
		Metadata: p.Metadata,
	}
}

package middleware

import (
	"context"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	// userIDKey holds the authenticated principal's ID.
	userIDKey = contextKey("userID")
	// sessionKey holds the authenticated domain.Session.
	sessionKey = contextKey("session")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetSessionFromContext retrieves the authenticated session from the Gin context.
func GetSessionFromContext(c *gin.Context) (domain.Session, bool) {
	return SessionFromCtx(c.Request.Context())
}

// SessionFromCtx retrieves the authenticated session from a standard context.
func SessionFromCtx(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(domain.Session)
	return s, ok
}

// WithSession returns a copy of ctx carrying the session and its user ID.
func WithSession(ctx context.Context, s domain.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	return context.WithValue(ctx, userIDKey, s.Principal.ID)
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/dto"
	"github.com/SscSPs/finance_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService portssvc.AuthSvcFacade
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as portssvc.AuthSvcFacade) *AuthHandler {
	return &AuthHandler{authService: as}
}

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// registerAuthRoutes sets up the routes for authentication. Sign-in endpoints sit behind limit,
// the session endpoints behind requireSession.
func registerAuthRoutes(r *gin.Engine, services *portssvc.ServiceContainer, limit, requireSession gin.HandlerFunc) {
	h := NewAuthHandler(services.Auth)

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", limit, h.Login)
		auth.POST("/logout", requireSession, h.Logout)
		auth.GET("/session", requireSession, h.Session)
		auth.GET("/user", requireSession, h.User)
	}

	if services.Google != nil {
		registerGoogleOAuthRoutes(auth, services.Google, limit)
	}
}

// Login godoc
// @Summary Sign in
// @Description Signs in with email and password and opens a server session.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToLoginResponse(result)})
}

// Logout godoc
// @Summary Sign out
// @Description Closes the current session and tells the user's other open streams.
// @Tags auth
// @Produce json
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), session.ID); err != nil {
		writeError(c, err, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	c.Status(http.StatusNoContent)
}

// Session godoc
// @Summary Current session
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	current, err := h.authService.CurrentSession(c.Request.Context(), session.ID)
	if err != nil {
		writeError(c, err, http.StatusInternalServerError, "Failed to load session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToSessionResponse(*current)})
}

// User godoc
// @Summary Current user
// @Description Asks the auth provider for the signed-in user.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/user [get]
func (h *AuthHandler) User(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	principal, err := h.authService.CurrentUser(c.Request.Context(), session.ID)
	if err != nil {
		writeError(c, err, http.StatusBadGateway, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToUserResponse(*principal)})
}

// writeError responds with the AppError in err, or with fallbackStatus and fallbackMsg when the
// chain carries no more specific status.
func writeError(c *gin.Context, err error, fallbackStatus int, fallbackMsg string) {
	logger := middleware.GetLoggerFromContext(c)

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code == 0 {
		status := apperrors.StatusFor(err)
		if status == http.StatusInternalServerError {
			status = fallbackStatus
		}
		appErr = apperrors.NewAppError(status, fallbackMsg, err)
	}

	if appErr.Code >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.Int("status", appErr.Code), slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", appErr.Code), slog.String("error", err.Error()))
	}
	c.JSON(appErr.Code, appErr)
}

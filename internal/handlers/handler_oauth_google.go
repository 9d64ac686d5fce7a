package handlers

import (
	"net/http"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/dto"
	"github.com/SscSPs/finance_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

// GoogleOAuthHandler handles Google sign-in.
type GoogleOAuthHandler struct {
	googleService portssvc.GoogleSignInSvc
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(gs portssvc.GoogleSignInSvc) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{googleService: gs}
}

// LoginURLGoogle godoc
// @Summary Google consent URL
// @Description Returns the Google consent URL together with the state the client must keep.
// @Tags oauth
// @Produce json
// @Success 200 {object} dto.GoogleLoginURLResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login-url [get]
func (h *GoogleOAuthHandler) LoginURLGoogle(c *gin.Context) {
	url, state, err := h.googleService.LoginURL(c.Request.Context())
	if err != nil {
		writeError(c, err, http.StatusInternalServerError, "Failed to start Google sign-in")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.GoogleLoginURLResponse{URL: url, State: state}})
}

// ExchangeCodeGoogle godoc
// @Summary Exchange authorization code for a session
// @Description Trades the code returned by Google for a server session.
// @Tags oauth
// @Accept json
// @Produce json
// @Param code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid authorization code"
// @Failure 401 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse "Google did not answer"
// @Router /auth/google/exchange-code [post]
func (h *GoogleOAuthHandler) ExchangeCodeGoogle(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.NewBadRequestError("Authorization code is required.")
		c.JSON(appErr.Code, appErr)
		return
	}

	result, err := h.googleService.ExchangeCode(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, err, http.StatusInternalServerError, "Failed to process Google sign-in")
		return
	}

	logger.Info("Signed in with Google", "session_id", result.Session.ID)
	c.JSON(http.StatusOK, gin.H{"data": dto.ToLoginResponse(result)})
}

// registerGoogleOAuthRoutes registers the Google OAuth routes.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, gs portssvc.GoogleSignInSvc, limit gin.HandlerFunc) {
	h := NewGoogleOAuthHandler(gs)
	googleRoutes := rg.Group("/google")
	{
		googleRoutes.GET("/login-url", h.LoginURLGoogle)
		googleRoutes.POST("/exchange-code", limit, h.ExchangeCodeGoogle)
	}
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) postLogin(body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) TestLogin_Success() {
	expires := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second)
	suite.mockAuthService.On("Login", mock.Anything, "ana@example.com", "segredo").
		Return(&portssvc.AuthResult{AccessToken: "jwt-token", ExpiresAt: expires, Session: suite.session}, nil).Once()

	w := suite.postLogin(`{"email":"ana@example.com","password":"segredo"}`)

	suite.Equal(http.StatusOK, w.Code)
	var body struct {
		Data dto.LoginResponse `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("jwt-token", body.Data.Token)
	suite.True(expires.Equal(body.Data.ExpiresAt))
	suite.Equal("sess-1", body.Data.Session.SessionID)
	suite.Equal("+5511999990000", body.Data.Session.OwnerIdentity)
	suite.mockAuthService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestLogin_InvalidCredentials() {
	msg := "Credenciais inválidas. Verifique o e-mail e a senha cadastrados."
	suite.mockAuthService.On("Login", mock.Anything, "ana@example.com", "errada").
		Return(nil, apperrors.NewAppError(http.StatusUnauthorized, msg, apperrors.ErrUnauthorized)).Once()

	w := suite.postLogin(`{"email":"ana@example.com","password":"errada"}`)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(msg, suite.errorMessage(w))
}

func (suite *HandlerTestSuite) TestLogin_MalformedBody() {
	w := suite.postLogin(`{"email":`)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAuthService.AssertNotCalled(suite.T(), "Login", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestSession_ReturnsCurrent() {
	claimed := suite.session
	claimed.Claim = &domain.ClaimResult{Claimed: 2}
	suite.mockAuthService.On("CurrentSession", mock.Anything, "sess-1").Return(&claimed, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/auth/session", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body struct {
		Data dto.SessionResponse `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("user-1", body.Data.User.UserID)
	suite.Require().NotNil(body.Data.Claim)
	suite.Equal(2, body.Data.Claim.Claimed)
}

func (suite *HandlerTestSuite) TestSession_Unauthenticated() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestUser_ProviderDown() {
	suite.mockAuthService.On("CurrentUser", mock.Anything, "sess-1").Return(nil, apperrors.ErrUpstream).Once()

	w := suite.do(http.MethodGet, "/api/v1/auth/user", nil)

	suite.Equal(http.StatusBadGateway, w.Code)
}

func (suite *HandlerTestSuite) TestLogout() {
	suite.mockAuthService.On("Logout", mock.Anything, "sess-1").Return(nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/logout", nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockAuthService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestGoogleRoutes_AbsentWhenDisabled() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/auth/google/login-url", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusNotFound, w.Code)
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/dto"
	"github.com/SscSPs/finance_dashboard/internal/handlers"
	"github.com/SscSPs/finance_dashboard/internal/platform/config"
	"github.com/SscSPs/finance_dashboard/internal/platform/session"
	"github.com/SscSPs/finance_dashboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	sessions        *session.Store
	jwtSecret       string
	mockTxnService  *MockTransactionService
	mockDashboard   *MockDashboardService
	mockReconcile   *MockReconciliationService
	mockAuthService *MockAuthService
	mockRealtime    *MockRealtime
	session         domain.Session
}

// generateTestToken signs a token for the stored test session.
func (suite *HandlerTestSuite) generateTestToken(s domain.Session) string {
	token, err := utils.GenerateSessionJWT(s.ID, s.Principal.ID, suite.jwtSecret, time.Now().Add(time.Hour), "fd-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.sessions = session.NewStore(10, time.Hour)

	suite.mockTxnService = new(MockTransactionService)
	suite.mockDashboard = new(MockDashboardService)
	suite.mockReconcile = new(MockReconciliationService)
	suite.mockAuthService = new(MockAuthService)
	suite.mockRealtime = new(MockRealtime)

	suite.session = domain.Session{
		ID:            "sess-1",
		Principal:     domain.Principal{ID: "user-1", Email: "ana@example.com"},
		OwnerIdentity: "+5511999990000",
		ExpiresAt:     time.Now().Add(time.Hour),
		CreatedAt:     time.Now(),
	}
	suite.sessions.SaveSession(suite.session)

	cfg := &config.Config{
		IsProduction:   true,
		JWTSecret:      suite.jwtSecret,
		LoginRateLimit: "100-M",
		Locale:         "pt-BR",
		Timezone:       "UTC",
	}
	services := &portssvc.ServiceContainer{
		Transaction:    suite.mockTxnService,
		Dashboard:      suite.mockDashboard,
		Reconciliation: suite.mockReconcile,
		Auth:           suite.mockAuthService,
		Realtime:       suite.mockRealtime,
	}
	err := handlers.RegisterRoutes(suite.router, cfg, services, suite.sessions)
	suite.Require().NoError(err)
}

func (suite *HandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.session))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) errorMessage(w *httptest.ResponseRecorder) string {
	var body handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func sessionMatcher(id string) any {
	return mock.MatchedBy(func(s domain.Session) bool { return s.ID == id })
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestHealth() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlerTestSuite) TestSuggestedCategories_Public() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/categories/suggested", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var body struct {
		Data []string `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(domain.SuggestedCategories, body.Data)
}

func (suite *HandlerTestSuite) TestListTransactions_RequiresSession() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTxnService.AssertNotCalled(suite.T(), "FetchTransactions", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestListTransactions_RevokedSession() {
	token := suite.generateTestToken(suite.session)
	suite.sessions.DeleteSession(suite.session.ID)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestListTransactions_Success() {
	when := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	owner := suite.session.OwnerIdentity
	txns := []domain.Transaction{
		{ID: "t1", OccurredAt: &when, RawDate: "05/03/2024 14:30", OwnerIdentity: &owner, Establishment: "Padaria",
			Amount: decimal.NewNullDecimal(decimal.RequireFromString("12.50")), Kind: domain.KindExpense, Category: "Alimentação"},
		{ID: "t2", RawDate: "ontem", Establishment: "Bot", Kind: domain.KindIncome, Category: "Outros"},
	}
	suite.mockTxnService.On("FetchTransactions", mock.Anything, sessionMatcher("sess-1")).Return(txns, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/transactions", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body struct {
		Data dto.ListTransactionsResponse `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Require().Len(body.Data.Transactions, 2)
	suite.True(body.Data.Transactions[0].Claimed)
	suite.False(body.Data.Transactions[1].Claimed)
	suite.Nil(body.Data.Transactions[1].Date)
	suite.False(body.Data.Transactions[1].Amount.Valid)
	suite.mockTxnService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreateTransaction_Success() {
	when := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	created := &domain.Transaction{ID: "t9", OccurredAt: &when, RawDate: "2024-03-05", Establishment: "Posto",
		Amount: decimal.NewNullDecimal(decimal.NewFromInt(200)), Kind: domain.KindExpense, Category: "Transporte"}

	expected := domain.TransactionInput{Date: "2024-03-05", Establishment: "Posto", Amount: "200", Kind: "expense", Category: "Transporte"}
	suite.mockTxnService.On("CreateTransaction", mock.Anything, sessionMatcher("sess-1"), expected).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"date": "2024-03-05", "establishment": "Posto", "amount": 200, "kind": "expense", "category": "Transporte",
	})

	suite.Equal(http.StatusCreated, w.Code)
	suite.Contains(w.Body.String(), `"transactionId":"t9"`)
	suite.mockTxnService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreateTransaction_ValidationError() {
	suite.mockTxnService.On("CreateTransaction", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewBadRequestError("invalid amount")).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", map[string]any{"amount": "abc"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("invalid amount", suite.errorMessage(w))
}

func (suite *HandlerTestSuite) TestCreateTransaction_StoreFailure() {
	suite.mockTxnService.On("CreateTransaction", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("failed to insert transaction: %w", apperrors.ErrUpstream)).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", map[string]any{"amount": "10"})

	suite.Equal(http.StatusBadGateway, w.Code)
	suite.Equal("Não foi possível salvar a transação.", suite.errorMessage(w))
}

func (suite *HandlerTestSuite) TestCreateTransaction_UnexpectedFailureIsBadGateway() {
	suite.mockTxnService.On("CreateTransaction", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("failed to insert transaction: connection reset")).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", map[string]any{"amount": "10"})

	suite.Equal(http.StatusBadGateway, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateTransaction_NotFound() {
	suite.mockTxnService.On("UpdateTransaction", mock.Anything, mock.Anything, "missing", mock.Anything).
		Return(nil, apperrors.NewNotFoundError("transaction not found")).Once()

	w := suite.do(http.MethodPut, "/api/v1/transactions/missing", map[string]any{"amount": "10,50"})

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("transaction not found", suite.errorMessage(w))
}

func (suite *HandlerTestSuite) TestUpdateTransaction_PassesCommaAmount() {
	updated := &domain.Transaction{ID: "t1", Kind: domain.KindIncome}
	suite.mockTxnService.On("UpdateTransaction", mock.Anything, mock.Anything, "t1",
		mock.MatchedBy(func(in domain.TransactionInput) bool { return in.Amount == "10,50" })).
		Return(updated, nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/transactions/t1", map[string]any{"amount": "10,50"})

	suite.Equal(http.StatusOK, w.Code)
	suite.mockTxnService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestDeleteTransaction_RequiresConfirmation() {
	suite.mockTxnService.On("DeleteTransaction", mock.Anything, mock.Anything, "t1", false).
		Return(apperrors.NewConfirmationRequiredError("Deleting a transaction must be confirmed")).Once()

	w := suite.do(http.MethodDelete, "/api/v1/transactions/t1", nil)

	suite.Equal(http.StatusPreconditionRequired, w.Code)
	suite.mockTxnService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestDeleteTransaction_Confirmed() {
	suite.mockTxnService.On("DeleteTransaction", mock.Anything, mock.Anything, "t1", true).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/transactions/t1?confirm=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"deleted":true`)
	suite.mockTxnService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestClaimTransactions() {
	suite.mockReconcile.On("ClaimUnowned", mock.Anything, sessionMatcher("sess-1")).
		Return(&domain.ClaimResult{Claimed: 3, RanAt: time.Now()}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions/claim", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body struct {
		Data dto.ClaimResponse `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(3, body.Data.Claimed)
	suite.False(body.Data.AlreadyRun)
}

func (suite *HandlerTestSuite) TestEvents_ClosesOnOwnSignOut() {
	raw := make(chan portssvc.Notification, 3)
	raw <- portssvc.Notification{Type: portssvc.NotificationRefresh, Change: &domain.ChangeEvent{Op: domain.ChangeInsert, OwnerIdentity: suite.session.OwnerIdentity}}
	raw <- portssvc.Notification{Type: portssvc.NotificationAuth, Auth: &domain.AuthEvent{SignedIn: false, SessionID: "other"}}
	raw <- portssvc.Notification{Type: portssvc.NotificationAuth, Auth: &domain.AuthEvent{SignedIn: false, SessionID: "sess-1"}}
	var ch <-chan portssvc.Notification = raw
	suite.mockRealtime.On("Subscribe", mock.Anything, sessionMatcher("sess-1")).Return(ch, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/events?access_token="+suite.generateTestToken(suite.session), nil)
	w := newStreamRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	suite.Equal(1, strings.Count(body, "event:refresh"))
	suite.Equal(2, strings.Count(body, "event:auth"))
	suite.Contains(body, `"sessionId":"sess-1"`)
}

// --- Run Test Suite ---
func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

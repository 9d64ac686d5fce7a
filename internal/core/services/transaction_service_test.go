package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/core/services"
	"github.com/SscSPs/finance_dashboard/internal/utils/dates"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockTransactionRepository
	publisher *recordingPublisher
	service   portssvc.TransactionSvcFacade
	session   domain.Session
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTransactionRepository)
	suite.publisher = &recordingPublisher{}
	suite.service = services.NewTransactionService(
		suite.mockRepo,
		services.WithPublisher(suite.publisher),
		services.WithNormalizer(dates.NewNormalizer(time.UTC)),
		services.WithRefreshGraceDelay(0),
	)
	suite.session = testSession("ana@example.com")
}

func dated(id string, y int, m time.Month, d int) domain.Transaction {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return domain.Transaction{ID: id, OccurredAt: &t, Kind: domain.KindExpense, Amount: decimal.NewNullDecimal(decimal.NewFromInt(1))}
}

func validInput() domain.TransactionInput {
	return domain.TransactionInput{
		Date:          "2024-03-05",
		Establishment: "Mercado",
		Amount:        "12,50",
		Kind:          "despesa",
		Category:      "Alimentação",
	}
}

func (suite *TransactionServiceTestSuite) TestFetchTransactions_MergesDedupesAndSorts() {
	scope := suite.session.Scope()
	owned := []domain.Transaction{dated("a", 2024, 3, 1), dated("b", 2024, 3, 10)}
	unowned := []domain.Transaction{dated("b", 2024, 3, 10), dated("c", 2024, 3, 5)}

	suite.mockRepo.On("ListTransactions", mock.Anything, scope, domain.TransactionQuery{OwnerIdentity: scope.OwnerIdentity}).Return(owned, nil).Once()
	suite.mockRepo.On("ListTransactions", mock.Anything, scope, domain.TransactionQuery{Unowned: true}).Return(unowned, nil).Once()

	txns, err := suite.service.FetchTransactions(context.Background(), suite.session)

	suite.Require().NoError(err)
	ids := make([]string, len(txns))
	for i, t := range txns {
		ids[i] = t.ID
	}
	suite.Equal([]string{"b", "c", "a"}, ids)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestFetchTransactions_UnownedFailureIsTolerated() {
	scope := suite.session.Scope()
	suite.mockRepo.On("ListTransactions", mock.Anything, scope, domain.TransactionQuery{OwnerIdentity: scope.OwnerIdentity}).
		Return([]domain.Transaction{dated("a", 2024, 1, 1)}, nil).Once()
	suite.mockRepo.On("ListTransactions", mock.Anything, scope, domain.TransactionQuery{Unowned: true}).
		Return(nil, apperrors.ErrUpstream).Once()

	txns, err := suite.service.FetchTransactions(context.Background(), suite.session)

	suite.Require().NoError(err)
	suite.Len(txns, 1)
}

func (suite *TransactionServiceTestSuite) TestFetchTransactions_OwnedFailureFails() {
	scope := suite.session.Scope()
	suite.mockRepo.On("ListTransactions", mock.Anything, scope, domain.TransactionQuery{OwnerIdentity: scope.OwnerIdentity}).
		Return(nil, apperrors.ErrUpstream).Once()
	suite.mockRepo.On("ListTransactions", mock.Anything, scope, domain.TransactionQuery{Unowned: true}).
		Return([]domain.Transaction{}, nil).Maybe()

	txns, err := suite.service.FetchTransactions(context.Background(), suite.session)

	suite.Require().Error(err)
	suite.Nil(txns)
	suite.ErrorIs(err, apperrors.ErrUpstream)
}

func (suite *TransactionServiceTestSuite) TestFetchTransactions_NoIdentity() {
	session := suite.session
	session.OwnerIdentity = ""

	_, err := suite.service.FetchTransactions(context.Background(), session)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_Success() {
	ctx := context.Background()
	scope := suite.session.Scope()

	suite.mockRepo.On("InsertTransaction", ctx, scope, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Establishment == "Mercado" &&
			t.Kind == domain.KindExpense &&
			t.Amount.Decimal.Equal(decimal.RequireFromString("12.5")) &&
			t.OwnerIdentity != nil && *t.OwnerIdentity == scope.OwnerIdentity &&
			t.OccurredAt != nil && t.OccurredAt.Day() == 5
	})).Return(&domain.Transaction{ID: "new-1"}, nil).Once()

	created, err := suite.service.CreateTransaction(ctx, suite.session, validInput())

	suite.Require().NoError(err)
	suite.Equal("new-1", created.ID)
	changes := suite.publisher.Changes()
	suite.Require().Len(changes, 1)
	suite.Equal(domain.ChangeInsert, changes[0].Op)
	suite.Equal(scope.OwnerIdentity, changes[0].OwnerIdentity)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_InvalidAmountSkipsStore() {
	in := validInput()
	in.Amount = "doze"

	_, err := suite.service.CreateTransaction(context.Background(), suite.session, in)

	suite.Require().Error(err)
	suite.Equal(http.StatusBadRequest, apperrors.StatusFor(err))
	suite.mockRepo.AssertNotCalled(suite.T(), "InsertTransaction", mock.Anything, mock.Anything, mock.Anything)
	suite.Empty(suite.publisher.Changes())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_MissingFields() {
	in := validInput()
	in.Establishment = "   "

	_, err := suite.service.CreateTransaction(context.Background(), suite.session, in)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_UnknownKind() {
	in := validInput()
	in.Kind = "transfer"

	_, err := suite.service.CreateTransaction(context.Background(), suite.session, in)

	suite.Require().Error(err)
	suite.Equal(http.StatusBadRequest, apperrors.StatusFor(err))
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_NotFound() {
	ctx := context.Background()
	scope := suite.session.Scope()
	suite.mockRepo.On("UpdateTransaction", ctx, scope, mock.MatchedBy(func(t domain.Transaction) bool { return t.ID == "x" })).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.UpdateTransaction(ctx, suite.session, "x", validInput())

	suite.Require().Error(err)
	suite.Equal(http.StatusNotFound, apperrors.StatusFor(err))
	suite.Empty(suite.publisher.Changes())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_Success() {
	ctx := context.Background()
	scope := suite.session.Scope()
	in := validInput()
	in.Kind = "income"
	suite.mockRepo.On("UpdateTransaction", ctx, scope, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.ID == "x" && t.Kind == domain.KindIncome && t.OwnerIdentity == nil
	})).Return(&domain.Transaction{ID: "x", Kind: domain.KindIncome}, nil).Once()

	updated, err := suite.service.UpdateTransaction(ctx, suite.session, "x", in)

	suite.Require().NoError(err)
	suite.Equal(domain.KindIncome, updated.Kind)
	suite.Require().Len(suite.publisher.Changes(), 1)
	suite.Equal(domain.ChangeUpdate, suite.publisher.Changes()[0].Op)
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_RequiresConfirmation() {
	err := suite.service.DeleteTransaction(context.Background(), suite.session, "x", false)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConfirmationRequired)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_Success() {
	ctx := context.Background()
	suite.mockRepo.On("DeleteTransaction", ctx, suite.session.Scope(), "x").Return(nil).Once()

	err := suite.service.DeleteTransaction(ctx, suite.session, "x", true)

	suite.Require().NoError(err)
	suite.Require().Len(suite.publisher.Changes(), 1)
	suite.Equal(domain.ChangeDelete, suite.publisher.Changes()[0].Op)
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_StoreError() {
	ctx := context.Background()
	suite.mockRepo.On("DeleteTransaction", ctx, suite.session.Scope(), "x").Return(apperrors.ErrUpstream).Once()

	err := suite.service.DeleteTransaction(ctx, suite.session, "x", true)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUpstream))
	suite.Empty(suite.publisher.Changes())
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "12.50", want: "12.5"},
		{in: "12,50", want: "12.5"},
		{in: " 7 ", want: "7"},
		{in: "0", want: "0"},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "NaN", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := services.ParseAmount(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, apperrors.StatusFor(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestTransactionService_DelaysRefresh(t *testing.T) {
	repo := new(MockTransactionRepository)
	pub := &recordingPublisher{}
	svc := services.NewTransactionService(repo,
		services.WithPublisher(pub),
		services.WithRefreshGraceDelay(20*time.Millisecond))
	session := testSession("bia")

	repo.On("DeleteTransaction", mock.Anything, session.Scope(), "x").Return(nil).Once()

	require.NoError(t, svc.DeleteTransaction(context.Background(), session, "x", true))
	assert.Empty(t, pub.Changes())
	assert.Eventually(t, func() bool { return len(pub.Changes()) == 1 }, time.Second, 5*time.Millisecond)
}

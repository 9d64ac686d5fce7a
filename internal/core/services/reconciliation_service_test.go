package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"github.com/SscSPs/finance_dashboard/internal/core/services"
	"github.com/SscSPs/finance_dashboard/internal/platform/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClaimUnowned_AssignsOnce(t *testing.T) {
	repo := new(MockTransactionRepository)
	pub := &recordingPublisher{}
	store := session.NewStore(10, time.Hour)
	sess := testSession("ana")
	sess.ExpiresAt = time.Now().Add(time.Hour)
	store.SaveSession(sess)
	scope := sess.Scope()

	repo.On("ListTransactions", mock.Anything, scope, domain.TransactionQuery{Unowned: true}).
		Return([]domain.Transaction{{ID: "u1"}, {ID: "u2"}}, nil).Once()
	repo.On("AssignOwner", mock.Anything, scope, []string{"u1", "u2"}, "ana").Return(2, nil).Once()

	svc := services.NewReconciliationService(repo, store, pub)

	first, err := svc.ClaimUnowned(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Claimed)
	assert.False(t, first.AlreadyRun)

	second, err := svc.ClaimUnowned(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Claimed)
	assert.True(t, second.AlreadyRun)

	repo.AssertExpectations(t)
	changes := pub.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, domain.ChangeClaim, changes[0].Op)
}

func TestClaimUnowned_ConcurrentCallsWriteOnce(t *testing.T) {
	repo := new(MockTransactionRepository)
	store := session.NewStore(10, time.Hour)
	sess := testSession("bia")
	sess.ExpiresAt = time.Now().Add(time.Hour)
	store.SaveSession(sess)

	repo.On("ListTransactions", mock.Anything, sess.Scope(), domain.TransactionQuery{Unowned: true}).
		Return([]domain.Transaction{{ID: "u1"}}, nil).Once()
	repo.On("AssignOwner", mock.Anything, sess.Scope(), []string{"u1"}, "bia").Return(1, nil).Once()

	svc := services.NewReconciliationService(repo, store, nil)

	var wg sync.WaitGroup
	results := make([]*domain.ClaimResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.ClaimUnowned(context.Background(), sess)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	fresh := 0
	for _, r := range results {
		require.NotNil(t, r)
		if !r.AlreadyRun {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
	repo.AssertExpectations(t)
}

func TestClaimUnowned_NothingToClaim(t *testing.T) {
	repo := new(MockTransactionRepository)
	pub := &recordingPublisher{}
	store := session.NewStore(10, time.Hour)
	sess := testSession("caio")
	sess.ExpiresAt = time.Now().Add(time.Hour)
	store.SaveSession(sess)

	repo.On("ListTransactions", mock.Anything, sess.Scope(), domain.TransactionQuery{Unowned: true}).
		Return([]domain.Transaction{}, nil).Once()

	res, err := services.NewReconciliationService(repo, store, pub).ClaimUnowned(context.Background(), sess)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Claimed)
	repo.AssertNotCalled(t, "AssignOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, pub.Changes())
}

func TestClaimUnowned_FailureCanBeRetried(t *testing.T) {
	repo := new(MockTransactionRepository)
	store := session.NewStore(10, time.Hour)
	sess := testSession("duda")
	sess.ExpiresAt = time.Now().Add(time.Hour)
	store.SaveSession(sess)

	repo.On("ListTransactions", mock.Anything, sess.Scope(), domain.TransactionQuery{Unowned: true}).
		Return(nil, apperrors.ErrUpstream).Once()
	repo.On("ListTransactions", mock.Anything, sess.Scope(), domain.TransactionQuery{Unowned: true}).
		Return([]domain.Transaction{}, nil).Once()

	svc := services.NewReconciliationService(repo, store, nil)

	_, err := svc.ClaimUnowned(context.Background(), sess)
	require.ErrorIs(t, err, apperrors.ErrUpstream)

	res, err := svc.ClaimUnowned(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, res.AlreadyRun)
}

func TestClaimUnowned_ExpiredSession(t *testing.T) {
	repo := new(MockTransactionRepository)
	store := session.NewStore(10, time.Hour)

	_, err := services.NewReconciliationService(repo, store, nil).ClaimUnowned(context.Background(), testSession("eva"))

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

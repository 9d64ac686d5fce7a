package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
)

// reconciliationService assigns unowned rows to the signed-in owner, once per session.
type reconciliationService struct {
	BaseService
	repo      portsrepo.TransactionRepositoryFacade
	sessions  portsrepo.SessionStore
	publisher portssvc.RealtimeSvc
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReconciliationService creates the reconciliation service. publisher may be nil.
func NewReconciliationService(repo portsrepo.TransactionRepositoryFacade, sessions portsrepo.SessionStore, publisher portssvc.RealtimeSvc) portssvc.ReconciliationSvc {
	return &reconciliationService{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

var _ portssvc.ReconciliationSvc = (*reconciliationService)(nil)

// ClaimUnowned selects every unowned row and assigns it to the session's owner by id list.
// Concurrent calls for the same session run one after the other; only the first writes.
func (s *reconciliationService) ClaimUnowned(ctx context.Context, session domain.Session) (*domain.ClaimResult, error) {
	scope := session.Scope()
	if scope.OwnerIdentity == "" {
		return nil, apperrors.NewUnauthorizedError("No identity available for the signed-in user")
	}

	lock := s.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read: another request may have claimed while we waited.
	current, ok := s.sessions.GetSession(session.ID)
	if !ok {
		return nil, apperrors.NewUnauthorizedError("Session expired, please sign in again")
	}
	if current.Claim != nil {
		s.releaseLock(session.ID)
		prior := *current.Claim
		prior.AlreadyRun = true
		return &prior, nil
	}

	unowned, err := s.repo.ListTransactions(ctx, scope, domain.TransactionQuery{Unowned: true})
	if err != nil {
		s.LogError(ctx, err, "Failed to list unowned transactions")
		return nil, fmt.Errorf("failed to list unowned transactions: %w", err)
	}

	claimed := 0
	if len(unowned) > 0 {
		ids := make([]string, len(unowned))
		for i, t := range unowned {
			ids[i] = t.ID
		}
		claimed, err = s.repo.AssignOwner(ctx, scope, ids, scope.OwnerIdentity)
		if err != nil {
			s.LogError(ctx, err, "Failed to assign owner", slog.Int("candidates", len(ids)))
			return nil, fmt.Errorf("failed to assign owner: %w", err)
		}
	}

	result := domain.ClaimResult{Claimed: claimed, RanAt: s.now()}
	s.sessions.RecordClaim(session.ID, result)
	s.releaseLock(session.ID)

	s.LogInfo(ctx, "Claimed unowned transactions",
		slog.Int("candidates", len(unowned)),
		slog.Int("claimed", claimed))

	if claimed > 0 && s.publisher != nil {
		s.publisher.PublishChange(domain.ChangeEvent{Op: domain.ChangeClaim, OwnerIdentity: scope.OwnerIdentity, At: result.RanAt})
	}
	return &result, nil
}

func (s *reconciliationService) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// releaseLock forgets the lock once the claim is recorded; later callers see it on the session.
// After a failure the lock stays so waiters retry one at a time.
func (s *reconciliationService) releaseLock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
}

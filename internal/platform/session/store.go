// Package session keeps server-side login sessions in memory.
package session

import (
	"sync"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store is a bounded, expiring session table. Sessions are lost on restart and users sign in again.
type Store struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, domain.Session]
	now   func() time.Time
}

var _ portsrepo.SessionStore = (*Store)(nil)

// NewStore creates a store holding at most maxEntries sessions for at most ttl each.
func NewStore(maxEntries int, ttl time.Duration) *Store {
	return &Store{
		cache: expirable.NewLRU[string, domain.Session](maxEntries, nil, ttl),
		now:   time.Now,
	}
}

// SaveSession adds or replaces a session.
func (s *Store) SaveSession(sess domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(sess.ID, sess)
}

// GetSession returns the session if it exists and has not passed its own expiry.
func (s *Store) GetSession(id string) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.cache.Get(id)
	if !ok {
		return domain.Session{}, false
	}
	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		s.cache.Remove(id)
		return domain.Session{}, false
	}
	return sess, true
}

// DeleteSession removes a session. Unknown ids are ignored.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(id)
}

// RecordClaim attaches the reconciliation result to the session.
func (s *Store) RecordClaim(id string, result domain.ClaimResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.cache.Peek(id)
	if !ok {
		return false
	}
	sess.Claim = &result
	s.cache.Add(id, sess)
	return true
}

// Len reports how many sessions are held.
func (s *Store) Len() int {
	return s.cache.Len()
}

package services_test

import (
	"context"
	"sync"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, scope domain.Scope, q domain.TransactionQuery) ([]domain.Transaction, error) {
	args := m.Called(ctx, scope, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) InsertTransaction(ctx context.Context, scope domain.Scope, txn domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, scope, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, scope domain.Scope, txn domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, scope, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, scope domain.Scope, id string) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) AssignOwner(ctx context.Context, scope domain.Scope, ids []string, owner string) (int, error) {
	args := m.Called(ctx, scope, ids, owner)
	return args.Int(0), args.Error(1)
}

// --- Mock AuthProvider ---
type MockAuthProvider struct {
	mock.Mock
}

func (m *MockAuthProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.Credentials, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credentials), args.Error(1)
}

func (m *MockAuthProvider) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockAuthProvider) GetUser(ctx context.Context, accessToken string) (*domain.Principal, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Principal), args.Error(1)
}

// --- Mock TransactionReaderSvc ---
type MockTransactionReader struct {
	mock.Mock
}

func (m *MockTransactionReader) FetchTransactions(ctx context.Context, session domain.Session) ([]domain.Transaction, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu      sync.Mutex
	changes []domain.ChangeEvent
	auths   []domain.AuthEvent
	owners  []string
}

func (p *recordingPublisher) Subscribe(ctx context.Context, session domain.Session) (<-chan portssvc.Notification, error) {
	return make(chan portssvc.Notification), nil
}

func (p *recordingPublisher) PublishChange(ev domain.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, ev)
}

func (p *recordingPublisher) PublishAuth(owner string, ev domain.AuthEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.owners = append(p.owners, owner)
	p.auths = append(p.auths, ev)
}

func (p *recordingPublisher) Changes() []domain.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ChangeEvent(nil), p.changes...)
}

func (p *recordingPublisher) Auths() []domain.AuthEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.AuthEvent(nil), p.auths...)
}

// fakeFeed is a ChangeSubscriber whose channels the test drives.
type fakeFeed struct {
	mu     sync.Mutex
	opened int
	chans  map[string]chan domain.ChangeEvent
	tokens map[string]portsrepo.TokenSource
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{chans: make(map[string]chan domain.ChangeEvent), tokens: make(map[string]portsrepo.TokenSource)}
}

func (f *fakeFeed) SubscribeChanges(ctx context.Context, owner string, token portsrepo.TokenSource) (<-chan domain.ChangeEvent, error) {
	ch := make(chan domain.ChangeEvent, 4)
	f.mu.Lock()
	f.opened++
	f.chans[owner] = ch
	f.tokens[owner] = token
	f.mu.Unlock()
	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.chans[owner] == ch {
			delete(f.chans, owner)
		}
		close(ch)
	}()
	return ch, nil
}

func (f *fakeFeed) send(owner string, ev domain.ChangeEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.chans[owner]
	if !ok {
		return false
	}
	ch <- ev
	return true
}

// token asks the feed's token source of owner, as a reconnect would.
func (f *fakeFeed) token(owner string) string {
	f.mu.Lock()
	src := f.tokens[owner]
	f.mu.Unlock()
	if src == nil {
		return ""
	}
	return src()
}

func (f *fakeFeed) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

func (f *fakeFeed) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chans)
}

func testSession(owner string) domain.Session {
	return domain.Session{
		ID:                  "sess-" + owner,
		Principal:           domain.Principal{ID: "user-" + owner},
		OwnerIdentity:       owner,
		ProviderAccessToken: "provider-token",
	}
}

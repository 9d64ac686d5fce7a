package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
)

const subscriberBuffer = 16

type subscriber struct {
	sessionID   string
	accessToken string
	seq         uint64
	ch          chan portssvc.Notification
}

// ownerFeed is the single store subscription shared by all streams of one owner.
type ownerFeed struct {
	subs   map[*subscriber]struct{}
	cancel context.CancelFunc
}

// RealtimeHub fans store changes, local mutations and auth events out to open streams.
// Delivery is best effort: a full stream drops the event, which is safe because every event means "refetch".
type RealtimeHub struct {
	BaseService
	feed   portsrepo.ChangeSubscriber
	logger *slog.Logger

	mu     sync.Mutex
	seq    uint64
	owners map[string]*ownerFeed
}

// NewRealtimeHub creates a hub. A nil feed serves only local events.
func NewRealtimeHub(feed portsrepo.ChangeSubscriber, logger *slog.Logger) *RealtimeHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &RealtimeHub{
		feed:   feed,
		logger: logger.With(slog.String("component", "realtime_hub")),
		owners: make(map[string]*ownerFeed),
	}
}

var _ portssvc.RealtimeSvc = (*RealtimeHub)(nil)

// Subscribe registers a stream until ctx is done. The first stream of an owner opens the store feed
// and the last one closes it.
func (h *RealtimeHub) Subscribe(ctx context.Context, session domain.Session) (<-chan portssvc.Notification, error) {
	owner := session.OwnerIdentity
	sub := &subscriber{
		sessionID:   session.ID,
		accessToken: session.Scope().AccessToken,
		ch:          make(chan portssvc.Notification, subscriberBuffer),
	}

	h.mu.Lock()
	h.seq++
	sub.seq = h.seq
	of, ok := h.owners[owner]
	if !ok {
		of = &ownerFeed{subs: make(map[*subscriber]struct{})}
		h.owners[owner] = of
	}
	of.subs[sub] = struct{}{}
	h.mu.Unlock()

	if !ok {
		h.startFeed(of, owner)
	}

	h.GetLogger(ctx).Debug("Realtime stream opened", slog.String("owner", owner))

	go func() {
		<-ctx.Done()
		h.unsubscribe(owner, sub)
	}()
	return sub.ch, nil
}

// startFeed opens the store subscription for a newly registered owner.
func (h *RealtimeHub) startFeed(of *ownerFeed, owner string) {
	if h.feed == nil {
		return
	}
	feedCtx, cancel := context.WithCancel(context.Background())

	events, err := h.feed.SubscribeChanges(feedCtx, owner, func() string { return h.feedToken(owner) })
	if err != nil {
		cancel()
		// Realtime is an enhancement; streams still get local events.
		h.logger.Warn("Failed to subscribe to store changes", slog.String("owner", owner), slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	if current, ok := h.owners[owner]; !ok || current != of {
		// Every stream left while we were dialing.
		h.mu.Unlock()
		cancel()
		return
	}
	of.cancel = cancel
	h.mu.Unlock()

	go func() {
		for ev := range events {
			if ev.OwnerIdentity == "" {
				ev.OwnerIdentity = owner
			}
			h.PublishChange(ev)
		}
	}()
}

// feedToken is the access token of the owner's most recent open stream, so a feed that
// reconnects after its first session signed out or expired uses a live one.
func (h *RealtimeHub) feedToken(owner string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var token string
	var newest uint64
	if of, ok := h.owners[owner]; ok {
		for sub := range of.subs {
			if sub.accessToken != "" && sub.seq > newest {
				token, newest = sub.accessToken, sub.seq
			}
		}
	}
	return token
}

func (h *RealtimeHub) unsubscribe(owner string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	of, ok := h.owners[owner]
	if !ok {
		return
	}
	if _, ok := of.subs[sub]; !ok {
		return
	}
	delete(of.subs, sub)
	close(sub.ch)

	if len(of.subs) == 0 {
		if of.cancel != nil {
			of.cancel()
		}
		delete(h.owners, owner)
	}
}

// PublishChange notifies every stream of the event's owner.
func (h *RealtimeHub) PublishChange(ev domain.ChangeEvent) {
	change := ev
	h.broadcast(ev.OwnerIdentity, portssvc.Notification{Type: portssvc.NotificationRefresh, Change: &change})
}

// PublishAuth notifies every stream of owner.
func (h *RealtimeHub) PublishAuth(owner string, ev domain.AuthEvent) {
	auth := ev
	h.broadcast(owner, portssvc.Notification{Type: portssvc.NotificationAuth, Auth: &auth})
}

func (h *RealtimeHub) broadcast(owner string, n portssvc.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	of, ok := h.owners[owner]
	if !ok {
		return
	}
	for sub := range of.subs {
		select {
		case sub.ch <- n:
		default:
			h.logger.Warn("Dropping realtime event for slow stream", slog.String("owner", owner), slog.String("session_id", sub.sessionID), slog.String("type", n.Type))
		}
	}
}

// Streams reports how many streams are open for owner.
func (h *RealtimeHub) Streams(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if of, ok := h.owners[owner]; ok {
		return len(of.subs)
	}
	return 0
}

// Close cancels every store feed and closes all streams.
func (h *RealtimeHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for owner, of := range h.owners {
		if of.cancel != nil {
			of.cancel()
		}
		for sub := range of.subs {
			close(sub.ch)
		}
		delete(h.owners, owner)
	}
}

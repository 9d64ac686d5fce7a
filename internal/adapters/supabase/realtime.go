package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	"github.com/gorilla/websocket"
)

const (
	heartbeatInterval = 30 * time.Second
	joinTimeout       = 10 * time.Second
	maxBackoff        = 30 * time.Second
)

// phxMessage is a Phoenix channel frame.
type phxMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     *string         `json:"ref"`
}

type phxReply struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type postgresChange struct {
	Data struct {
		Type            string          `json:"type"`
		CommitTimestamp string          `json:"commit_timestamp"`
		Record          json.RawMessage `json:"record"`
		OldRecord       json.RawMessage `json:"old_record"`
	} `json:"data"`
}

// RealtimeFeed subscribes to row changes through the Realtime websocket.
type RealtimeFeed struct {
	client *Client
	dialer *websocket.Dialer
	logger *slog.Logger
}

// NewRealtimeFeed creates the feed.
func NewRealtimeFeed(client *Client) *RealtimeFeed {
	return &RealtimeFeed{
		client: client,
		dialer: &websocket.Dialer{HandshakeTimeout: joinTimeout},
		logger: client.logger.With(slog.String("feed", "realtime")),
	}
}

var _ portsrepo.ChangeSubscriber = (*RealtimeFeed)(nil)

// socketURL turns the project URL into the Realtime websocket endpoint.
func (f *RealtimeFeed) socketURL() (string, error) {
	u, err := url.Parse(f.client.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid supabase url: %v", apperrors.ErrConfig, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/realtime/v1/websocket"
	u.RawQuery = url.Values{"apikey": {f.client.anonKey}, "vsn": {"1.0.0"}}.Encode()
	return u.String(), nil
}

// SubscribeChanges joins the owner's postgres_changes channel. The first connection is made before
// returning; later drops reconnect with backoff until ctx is done, each with a fresh token.
func (f *RealtimeFeed) SubscribeChanges(ctx context.Context, owner string, token portsrepo.TokenSource) (<-chan domain.ChangeEvent, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner identity is required", apperrors.ErrValidation)
	}
	if token == nil {
		token = func() string { return "" }
	}
	endpoint, err := f.socketURL()
	if err != nil {
		return nil, err
	}

	conn, err := f.connect(ctx, endpoint, owner, token())
	if err != nil {
		return nil, err
	}

	out := make(chan domain.ChangeEvent, 8)
	go func() {
		defer close(out)
		backoff := time.Second
		for {
			err := f.pump(ctx, conn, out)
			if ctx.Err() != nil {
				return
			}
			f.logger.Warn("Realtime connection lost", slog.String("owner", owner), slog.String("error", err.Error()))

			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}
				conn, err = f.connect(ctx, endpoint, owner, token())
				if err == nil {
					backoff = time.Second
					break
				}
				f.logger.Warn("Realtime reconnect failed", slog.String("error", err.Error()))
				backoff = min(backoff*2, maxBackoff)
			}
		}
	}()
	return out, nil
}

// connect dials and joins, waiting for the join reply.
func (f *RealtimeFeed) connect(ctx context.Context, endpoint, owner, accessToken string) (*websocket.Conn, error) {
	conn, _, err := f.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: realtime dial failed: %v", apperrors.ErrUpstream, err)
	}

	topic := "realtime:public:" + f.client.Table()
	join := map[string]any{
		"config": map[string]any{
			"postgres_changes": []map[string]string{{
				"event":  "*",
				"schema": "public",
				"table":  f.client.Table(),
				"filter": colOwner + "=eq." + owner,
			}},
		},
		"access_token": f.client.bearer(accessToken),
	}
	if err := writeFrame(conn, topic, "phx_join", join, "1"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: realtime join failed: %v", apperrors.ErrUpstream, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(joinTimeout))
	for {
		var msg phxMessage
		if err := conn.ReadJSON(&msg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: realtime join reply: %v", apperrors.ErrUpstream, err)
		}
		if msg.Event != "phx_reply" || msg.Ref == nil || *msg.Ref != "1" {
			continue
		}
		var reply phxReply
		if err := json.Unmarshal(msg.Payload, &reply); err != nil || reply.Status != "ok" {
			conn.Close()
			return nil, fmt.Errorf("%w: realtime join rejected: %s", apperrors.ErrUpstream, string(msg.Payload))
		}
		break
	}
	_ = conn.SetReadDeadline(time.Time{})
	return conn, nil
}

// pump forwards change frames and sends heartbeats until the connection fails or ctx is done.
func (f *RealtimeFeed) pump(ctx context.Context, conn *websocket.Conn, out chan<- domain.ChangeEvent) error {
	var writeMu sync.Mutex
	var ref atomic.Int64
	ref.Store(1)

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				writeMu.Lock()
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				writeMu.Unlock()
				conn.Close()
				return
			case <-ticker.C:
				writeMu.Lock()
				err := writeFrame(conn, "phoenix", "heartbeat", map[string]any{}, strconv.FormatInt(ref.Add(1), 10))
				writeMu.Unlock()
				if err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	defer conn.Close()
	for {
		var msg phxMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		switch msg.Event {
		case "postgres_changes":
			ev, ok := decodeChange(msg.Payload)
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		case "phx_error", "phx_close":
			return errors.New("channel " + msg.Event)
		}
	}
}

func writeFrame(conn *websocket.Conn, topic, event string, payload any, ref string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteJSON(phxMessage{Topic: topic, Event: event, Payload: raw, Ref: &ref})
}

// decodeChange maps a postgres_changes payload onto a ChangeEvent.
func decodeChange(payload json.RawMessage) (domain.ChangeEvent, bool) {
	var change postgresChange
	if err := json.Unmarshal(payload, &change); err != nil {
		return domain.ChangeEvent{}, false
	}

	ev := domain.ChangeEvent{Op: domain.ChangeOp(strings.ToUpper(change.Data.Type)), At: time.Now()}
	switch ev.Op {
	case domain.ChangeInsert, domain.ChangeUpdate, domain.ChangeDelete:
	default:
		return domain.ChangeEvent{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, change.Data.CommitTimestamp); err == nil {
		ev.At = t
	}

	record := change.Data.Record
	if ev.Op == domain.ChangeDelete {
		record = change.Data.OldRecord
	}
	var row struct {
		ID    rowID   `json:"id"`
		Owner *string `json:"user_id"`
	}
	if len(record) > 0 && json.Unmarshal(record, &row) == nil {
		ev.TransactionID = string(row.ID)
		if row.Owner != nil {
			ev.OwnerIdentity = *row.Owner
		}
	}
	return ev, true
}

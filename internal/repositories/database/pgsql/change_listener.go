package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChangesChannel is the NOTIFY channel the transacoes trigger publishes on.
const ChangesChannel = "transactions_changes"

const listenRetryDelay = 2 * time.Second

// notifyPayload mirrors the json_build_object in the notify migration.
type notifyPayload struct {
	Op       string    `json:"op"`
	ID       string    `json:"id"`
	Owner    *string   `json:"user_id"`
	OldOwner *string   `json:"old_user_id"`
	At       time.Time `json:"at"`
}

// ChangeListener turns LISTEN/NOTIFY messages into change events.
type ChangeListener struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewChangeListener creates a listener on pool.
func NewChangeListener(pool *pgxpool.Pool) *ChangeListener {
	return &ChangeListener{pool: pool, logger: slog.Default().With("component", "pg_listener")}
}

// Ensure ChangeListener implements portsrepo.ChangeSubscriber
var _ portsrepo.ChangeSubscriber = (*ChangeListener)(nil)

// SubscribeChanges holds one pooled connection in LISTEN mode while ctx is alive.
// The database connection is already privileged, so token is not used.
func (l *ChangeListener) SubscribeChanges(ctx context.Context, owner string, _ portsrepo.TokenSource) (<-chan domain.ChangeEvent, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner identity is required", apperrors.ErrValidation)
	}
	out := make(chan domain.ChangeEvent, 16)
	go func() {
		defer close(out)
		for ctx.Err() == nil {
			err := l.listen(ctx, owner, out)
			if ctx.Err() != nil {
				return
			}
			l.logger.Warn("change listener stopped, retrying", "owner", owner, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(listenRetryDelay):
			}
		}
	}()
	return out, nil
}

func (l *ChangeListener) listen(ctx context.Context, owner string, out chan<- domain.ChangeEvent) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangesChannel); err != nil {
		return fmt.Errorf("listen %s: %w", ChangesChannel, err)
	}
	defer func() {
		// The connection goes back to the pool; stop listening on it first.
		_, _ = conn.Exec(context.Background(), "UNLISTEN "+ChangesChannel)
	}()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, ok, err := decodeNotification(n.Payload, owner)
		if err != nil {
			l.logger.Warn("ignoring malformed change notification", "error", err)
			continue
		}
		if !ok {
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// decodeNotification returns the event when it concerns owner, either as the new or the previous owner.
func decodeNotification(payload, owner string) (domain.ChangeEvent, bool, error) {
	var p notifyPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return domain.ChangeEvent{}, false, err
	}
	op := domain.ChangeOp(p.Op)
	switch op {
	case domain.ChangeInsert, domain.ChangeUpdate, domain.ChangeDelete:
	default:
		return domain.ChangeEvent{}, false, errors.New("unknown op " + p.Op)
	}
	matches := (p.Owner != nil && *p.Owner == owner) || (p.OldOwner != nil && *p.OldOwner == owner)
	if !matches {
		return domain.ChangeEvent{}, false, nil
	}
	at := p.At
	if at.IsZero() {
		at = time.Now()
	}
	return domain.ChangeEvent{Op: op, OwnerIdentity: owner, TransactionID: p.ID, At: at}, true, nil
}

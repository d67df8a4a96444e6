package session

import (
	"context"
	"fmt"
	"log"

	"github.com/skillscout/skillscout/session/inmemory"
	"github.com/skillscout/skillscout/session/postgres"

	"github.com/skillscout/skillscout/models"
)

// Store is a durable, per-session ordered log of message items keyed by an
// opaque session id. Implementations must keep Ensure idempotent under
// concurrent calls and return items in strict chronological order.
//
// Operations return their storage error so callers can tell "no history"
// from "history lost to a fault"; the orchestrator logs and degrades rather
// than failing the user-facing stream.
type Store interface {
	Ensure(ctx context.Context, sessionID string) error
	// GetItems returns items oldest-first. With limit > 0 it returns the
	// most recent limit items, still oldest-first.
	GetItems(ctx context.Context, sessionID string, limit int) ([]models.Item, error)
	// AddItems appends items atomically as a batch; no-op on empty input.
	AddItems(ctx context.Context, sessionID string, items []models.Item) error
	// PopItem removes and returns the most recently inserted item, nil when
	// the session has no items.
	PopItem(ctx context.Context, sessionID string) (*models.Item, error)
	// Clear deletes all items and the session row itself.
	Clear(ctx context.Context, sessionID string) error
}

type StoreType string

const (
	PostgresStore StoreType = "postgres"
	InMemoryStore StoreType = "inmemory"
)

// NewStore builds a session store for the configured backend.
func NewStore(ctx context.Context, storeType StoreType, dsn string, logger *log.Logger) (Store, error) {
	switch storeType {
	case PostgresStore:
		return postgres.NewWithDSN(ctx, dsn, logger)
	case InMemoryStore:
		return inmemory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", storeType)
	}
}

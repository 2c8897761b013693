package ports

import (
	"context"
	"time"
)

// IdempotencyRecord associates a client-supplied key with the order it produced.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore persists idempotency keys so order placement can be replayed safely.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save inserts the record. When the key exists the stored record is returned unchanged.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}

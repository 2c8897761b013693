package memory

import (
	"context"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

type idempotency struct{ scope }

// Get returns the stored record for the provided key, or nil when absent.
func (i idempotency) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	var out *ports.IdempotencyRecord
	err := i.with(func(st *state) error {
		if record, ok := st.idempotency[key]; ok {
			out = &record
		}
		return nil
	})
	return out, err
}

// Save persists the record or returns the existing record for the key.
func (i idempotency) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	var out *ports.IdempotencyRecord
	err := i.with(func(st *state) error {
		if existing, ok := st.idempotency[record.Key]; ok {
			out = &existing
			return nil
		}
		now := i.timestamp()
		record.CreatedAt = now
		record.UpdatedAt = now
		st.idempotency[record.Key] = record
		out = &record
		return nil
	})
	return out, err
}

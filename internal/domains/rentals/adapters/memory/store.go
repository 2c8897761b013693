package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

var _ ports.Transactor = (*Store)(nil)

// Store is an in-memory rentals store. Transactions are serialized by a single mutex and
// run against a private copy of the state that replaces the live state only on success.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type state struct {
	variants          map[int64]domain.Variant
	orders            map[int64]domain.Order
	reservations      map[int64]domain.Reservation
	idempotency       map[string]ports.IdempotencyRecord
	nextOrderID       int64
	nextReservationID int64
}

func newState() *state {
	return &state{
		variants:     map[int64]domain.Variant{},
		orders:       map[int64]domain.Order{},
		reservations: map[int64]domain.Reservation{},
		idempotency:  map[string]ports.IdempotencyRecord{},
	}
}

func (s *state) clone() *state {
	return &state{
		variants:          maps.Clone(s.variants),
		orders:            maps.Clone(s.orders),
		reservations:      maps.Clone(s.reservations),
		idempotency:       maps.Clone(s.idempotency),
		nextOrderID:       s.nextOrderID,
		nextReservationID: s.nextReservationID,
	}
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *Store) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// PutVariant seeds or replaces a catalog variant.
func (s *Store) PutVariant(v domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.variants[v.ID] = v
}

// Reset drops every order, reservation and idempotency key but keeps the catalog.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := newState()
	fresh.variants = s.state.variants
	s.state = fresh
}

func (s *Store) Catalog() ports.Catalog                   { return catalog{s.scope()} }
func (s *Store) Reservations() ports.ReservationRepository { return reservations{s.scope()} }
func (s *Store) Orders() ports.OrderRepository             { return orders{s.scope()} }
func (s *Store) Idempotency() ports.IdempotencyStore       { return idempotency{s.scope()} }

// WithinTx runs fn against a snapshot and commits it only when fn and ctx both succeed.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	working := s.state.clone()
	if err := fn(ctx, &txStore{scope: scope{tx: working, now: s.now}}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) scope() scope {
	return scope{store: s, now: s.now}
}

// scope resolves which state an operation touches: the live state under the store
// lock, or a transaction's private copy whose lock is already held.
type scope struct {
	store *Store
	tx    *state
	now   func() time.Time
}

func (sc scope) with(fn func(st *state) error) error {
	if sc.tx != nil {
		return fn(sc.tx)
	}
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	return fn(sc.store.state)
}

func (sc scope) timestamp() time.Time {
	return sc.now().UTC()
}

type txStore struct {
	scope scope
}

func (t *txStore) Catalog() ports.Catalog                   { return catalog{t.scope} }
func (t *txStore) Reservations() ports.ReservationRepository { return reservations{t.scope} }
func (t *txStore) Orders() ports.OrderRepository             { return orders{t.scope} }
func (t *txStore) Idempotency() ports.IdempotencyStore       { return idempotency{t.scope} }

type catalog struct{ scope }

func (c catalog) GetVariant(_ context.Context, id int64) (*domain.Variant, error) {
	var out *domain.Variant
	err := c.with(func(st *state) error {
		v, ok := st.variants[id]
		if !ok {
			return domain.NotFound("variant", id)
		}
		out = &v
		return nil
	})
	return out, err
}

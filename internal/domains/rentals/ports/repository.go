package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
)

// ErrExclusionViolated is returned by ReservationRepository.Insert when committing the
// row would push the summed ACTIVE quantity of any overlapping instant above stock.
var ErrExclusionViolated = errors.New("reservation exclusion violated")

// Catalog exposes read access to variants owned by the product catalog.
type Catalog interface {
	GetVariant(ctx context.Context, id int64) (*domain.Variant, error)
}

// ReservationFilter narrows reservation listings.
type ReservationFilter struct {
	Statuses []domain.ReservationStatus
}

// ReservationRepository owns reservation rows.
type ReservationRepository interface {
	// SumActiveOverlapping returns the summed quantity of ACTIVE reservations on the
	// variant whose period intersects p.
	SumActiveOverlapping(ctx context.Context, variantID int64, p domain.Period) (int, error)
	// Insert persists an ACTIVE reservation and assigns its ID. It fails atomically with
	// ErrExclusionViolated when the insert would oversubscribe the variant, and with
	// domain.ErrNotFound when the variant does not exist.
	Insert(ctx context.Context, r *domain.Reservation) error
	// Transition moves a reservation out of ACTIVE. Missing rows yield domain.ErrNotFound,
	// rows already terminal yield domain.ErrAlreadyTerminal.
	Transition(ctx context.Context, id int64, to domain.ReservationStatus) (*domain.Reservation, error)
	// TransitionByOrder moves every ACTIVE reservation of the order and returns how many changed.
	TransitionByOrder(ctx context.Context, orderID int64, to domain.ReservationStatus) (int, error)
	// CompleteEndedBefore completes ACTIVE reservations whose period ended at or before cutoff.
	CompleteEndedBefore(ctx context.Context, cutoff time.Time) (int, error)
	GetView(ctx context.Context, id int64) (*domain.ReservationView, error)
	ListByCustomer(ctx context.Context, customerID int64, filter ReservationFilter) ([]*domain.ReservationView, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.Reservation, error)
}

// OrderFilter narrows and paginates order listings.
type OrderFilter struct {
	Status *domain.OrderStatus
	Page   int
	Limit  int
}

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	// Get loads an order together with its reservations.
	Get(ctx context.Context, id int64) (*domain.Order, error)
	// Lock loads an order and holds a row lock until the surrounding transaction ends.
	Lock(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	// UpdateTerms stores the envelope and totals after reservations are attached.
	UpdateTerms(ctx context.Context, id int64, period domain.Period, totals domain.Totals) error
	ListByCustomer(ctx context.Context, customerID int64, filter OrderFilter) ([]*domain.OrderSummary, error)
	// CompleteFulfilled completes CONFIRMED orders that no longer hold ACTIVE reservations.
	CompleteFulfilled(ctx context.Context) (int, error)
}

// Store groups the repositories that share one transactional scope.
type Store interface {
	Catalog() Catalog
	Reservations() ReservationRepository
	Orders() OrderRepository
	Idempotency() IdempotencyStore
}

// Transactor runs fn inside one all-or-nothing transaction. The Store handed to fn is
// scoped to that transaction; any returned error rolls everything back.
type Transactor interface {
	Store
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

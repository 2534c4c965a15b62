package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// DefaultReservationTTL is how long a hold lives before the sweeper may expire it
const DefaultReservationTTL = 5 * time.Minute

// ReservationStatus is the lifecycle state of a reservation
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "ACTIVE"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusExpired   ReservationStatus = "EXPIRED"
)

// IsValid checks if the status is a known value
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusActive, ReservationStatusConfirmed, ReservationStatusCancelled, ReservationStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusConfirmed || s == ReservationStatusCancelled || s == ReservationStatusExpired
}

// String returns the string representation
func (s ReservationStatus) String() string {
	return string(s)
}

// Reservation is a time-bounded hold of stock on one SKU for one order.
// It references the SKU; the SKU owns the counters.
type Reservation struct {
	shared.BaseAggregateRoot
	SKUID     uuid.UUID
	OrderID   string
	Quantity  int
	Status    ReservationStatus
	ExpiresAt time.Time
}

// NewReservation creates an ACTIVE reservation expiring ttl after now
func NewReservation(skuID uuid.UUID, orderID string, quantity int, ttl time.Duration, now time.Time) (*Reservation, error) {
	if skuID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "SKU ID cannot be empty")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}
	return &Reservation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		SKUID:             skuID,
		OrderID:           orderID,
		Quantity:          quantity,
		Status:            ReservationStatusActive,
		ExpiresAt:         now.Add(ttl),
	}, nil
}

// IsActive returns true while the hold still counts against the SKU
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}

// IsExpired returns true if the hold is active and past its deadline at now
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.IsActive() && now.After(r.ExpiresAt)
}

// Confirm marks the hold as a completed sale
func (r *Reservation) Confirm(now time.Time) bool {
	return r.transition(ReservationStatusConfirmed, now)
}

// Cancel marks the hold as released by the order subsystem
func (r *Reservation) Cancel(now time.Time) bool {
	return r.transition(ReservationStatusCancelled, now)
}

// Expire marks the hold as released by the sweeper
func (r *Reservation) Expire(now time.Time) bool {
	return r.transition(ReservationStatusExpired, now)
}

// transition applies an ACTIVE -> terminal move. Leaving a terminal state is a
// no-op that reports false so duplicate deliveries stay harmless.
func (r *Reservation) transition(to ReservationStatus, now time.Time) bool {
	if !r.IsActive() || !to.IsTerminal() {
		return false
	}
	r.Status = to
	r.Touch(now)
	r.AddDomainEvent(NewReservationTransitionedEvent(r, now))
	return true
}

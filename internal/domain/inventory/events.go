package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeReservation = "Reservation"
	AggregateTypeProduct     = "Product"
)

// Event type constants
const (
	EventTypeReservationConfirmed = "ReservationConfirmed"
	EventTypeReservationCancelled = "ReservationCancelled"
	EventTypeReservationExpired   = "ReservationExpired"
	EventTypeProductArchived      = "ProductArchived"
)

// ReservationTransitionedEvent is raised when a hold leaves the ACTIVE state
type ReservationTransitionedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID         `json:"reservation_id"`
	SKUID         uuid.UUID         `json:"sku_id"`
	OrderID       string            `json:"order_id"`
	Quantity      int               `json:"quantity"`
	Status        ReservationStatus `json:"status"`
}

// NewReservationTransitionedEvent creates the event matching the reservation's current status
func NewReservationTransitionedEvent(r *Reservation, now time.Time) *ReservationTransitionedEvent {
	return &ReservationTransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventTypeForStatus(r.Status), AggregateTypeReservation, r.ID, now),
		ReservationID:   r.ID,
		SKUID:           r.SKUID,
		OrderID:         r.OrderID,
		Quantity:        r.Quantity,
		Status:          r.Status,
	}
}

// PartitionKey groups all events of one order together
func (e *ReservationTransitionedEvent) PartitionKey() string {
	return e.OrderID
}

func eventTypeForStatus(status ReservationStatus) string {
	switch status {
	case ReservationStatusConfirmed:
		return EventTypeReservationConfirmed
	case ReservationStatusCancelled:
		return EventTypeReservationCancelled
	default:
		return EventTypeReservationExpired
	}
}

// ProductArchivedEvent is raised when the archival task deactivates a depleted product
type ProductArchivedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
}

// NewProductArchivedEvent creates a new ProductArchivedEvent
func NewProductArchivedEvent(productID uuid.UUID, now time.Time) *ProductArchivedEvent {
	return &ProductArchivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductArchived, AggregateTypeProduct, productID, now),
		ProductID:       productID,
	}
}

package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
)

// ReserveItem is one line of a reserve request
type ReserveItem struct {
	SKUID    uuid.UUID `json:"sku_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,gt=0"`
}

// ReserveInventoryRequest asks for an all-or-nothing hold on every item
type ReserveInventoryRequest struct {
	OrderID string        `json:"order_id" binding:"required,max=100"`
	Items   []ReserveItem `json:"items" binding:"required,min=1,dive"`
}

func (r ReserveInventoryRequest) lines() []inventory.ReservationLine {
	lines := make([]inventory.ReservationLine, len(r.Items))
	for i, item := range r.Items {
		lines[i] = inventory.ReservationLine{SKUID: item.SKUID, Quantity: item.Quantity}
	}
	return lines
}

// ReserveInventoryResult is the outcome of a reserve call.
// Success is false exactly when InsufficientStock is non-empty.
type ReserveInventoryResult struct {
	Success           bool                  `json:"success"`
	OrderID           string                `json:"order_id"`
	ReservationIDs    []uuid.UUID           `json:"reservation_ids,omitempty"`
	ExpiresAt         *time.Time            `json:"expires_at,omitempty"`
	InsufficientStock []inventory.Shortfall `json:"insufficient_stock,omitempty"`
}

// TransitionOutcome tells whether confirm/cancel changed anything
type TransitionOutcome string

const (
	TransitionApplied          TransitionOutcome = "APPLIED"
	TransitionAlreadyProcessed TransitionOutcome = "ALREADY_PROCESSED"
)

// TransitionResult is the outcome of confirm or cancel
type TransitionResult struct {
	Success        bool              `json:"success"`
	OrderID        string            `json:"order_id"`
	Outcome        TransitionOutcome `json:"outcome"`
	ReservationIDs []uuid.UUID       `json:"reservation_ids,omitempty"`
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID        uuid.UUID `json:"id"`
	SKUID     uuid.UUID `json:"sku_id"`
	OrderID   string    `json:"order_id"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToReservationResponse converts a domain reservation to a response
func ToReservationResponse(r *inventory.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		SKUID:     r.SKUID,
		OrderID:   r.OrderID,
		Quantity:  r.Quantity,
		Status:    r.Status.String(),
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// CleanupResult reports one sweeper pass
type CleanupResult struct {
	CleanedCount int       `json:"cleaned_count"`
	Skipped      int       `json:"skipped"`
	Failed       int       `json:"failed"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// ArchiveResult reports one archival pass
type ArchiveResult struct {
	ArchivedCount int       `json:"archived_count"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	ProcessedAt   time.Time `json:"processed_at"`
}

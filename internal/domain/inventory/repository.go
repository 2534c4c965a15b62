package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SKURepository defines persistence for the stock ledger.
//
// Counter mutations are expressed as guarded, store-side arithmetic so the
// stock/reserved pair is never read-modified-written in application memory.
type SKURepository interface {
	// FindByIDs finds SKUs by id; unknown ids are simply absent from the result
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]SKU, error)

	// Save creates or updates a SKU
	Save(ctx context.Context, sku *SKU) error

	// IncrementReserved adds quantity to reserved stock if at least that much is
	// available. Returns false when the guard did not match.
	IncrementReserved(ctx context.Context, id uuid.UUID, quantity int) (bool, error)

	// ReleaseReserved subtracts quantity from reserved stock only
	ReleaseReserved(ctx context.Context, id uuid.UUID, quantity int) error

	// CommitReserved subtracts quantity from both stock and reserved stock
	CommitReserved(ctx context.Context, id uuid.UUID, quantity int) error
}

// ReservationRepository defines persistence for the reservation log
type ReservationRepository interface {
	// FindByID finds a reservation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindByOrder finds every reservation of an order regardless of status
	FindByOrder(ctx context.Context, orderID string) ([]Reservation, error)

	// FindActiveByOrder finds ACTIVE reservations of an order
	FindActiveByOrder(ctx context.Context, orderID string) ([]Reservation, error)

	// FindExpired finds up to limit ACTIVE reservations whose deadline is before now
	FindExpired(ctx context.Context, now time.Time, limit int) ([]Reservation, error)

	// CountExpired counts ACTIVE reservations whose deadline is before now
	CountExpired(ctx context.Context, now time.Time) (int64, error)

	// CreateBatch inserts new reservations
	CreateBatch(ctx context.Context, reservations []*Reservation) error

	// TransitionFromActive moves a reservation from ACTIVE to the given status.
	// Returns false when the reservation was no longer ACTIVE.
	TransitionFromActive(ctx context.Context, id uuid.UUID, to ReservationStatus, now time.Time) (bool, error)

	// SumActiveQuantity sums the quantity of ACTIVE reservations for a SKU
	SumActiveQuantity(ctx context.Context, skuID uuid.UUID) (int, error)
}

// ProductRepository defines the product operations the engine needs
type ProductRepository interface {
	// FindByIDs finds products by id
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// FindDepletedActive lists active products that have SKUs and no SKU with
	// available stock, up to limit
	FindDepletedActive(ctx context.Context, limit int) ([]Product, error)

	// ArchiveIfDepleted deactivates the product when it is still active and
	// still depleted. Returns false when either condition no longer holds.
	ArchiveIfDepleted(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}

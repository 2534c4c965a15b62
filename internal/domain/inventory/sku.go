package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// SKU is a purchasable variant of a product and carries the stock ledger counters.
// Invariant: Stock >= ReservedStock >= 0.
type SKU struct {
	shared.BaseEntity
	ProductID     uuid.UUID
	Code          string
	Stock         int
	ReservedStock int
	IsActive      bool
}

// NewSKU creates an active SKU with the given on-hand stock
func NewSKU(productID uuid.UUID, code string, stock int, now time.Time) (*SKU, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	if stock < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Stock cannot be negative")
	}
	return &SKU{
		BaseEntity: shared.NewBaseEntity(now),
		ProductID:  productID,
		Code:       code,
		Stock:      stock,
		IsActive:   true,
	}, nil
}

// AvailableStock returns stock that can still be reserved
func (s *SKU) AvailableStock() int {
	return s.Stock - s.ReservedStock
}

// CanReserve reports whether quantity units are available
func (s *SKU) CanReserve(quantity int) bool {
	return quantity > 0 && s.AvailableStock() >= quantity
}

// Hold moves quantity units from available into reserved
func (s *SKU) Hold(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if !s.CanReserve(quantity) {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for SKU %s: requested %d, available %d", s.ID, quantity, s.AvailableStock()))
	}
	s.ReservedStock += quantity
	return nil
}

// Release returns quantity reserved units to available
func (s *SKU) Release(quantity int) error {
	if quantity <= 0 || quantity > s.ReservedStock {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot release %d units from SKU %s holding %d", quantity, s.ID, s.ReservedStock))
	}
	s.ReservedStock -= quantity
	return nil
}

// Commit turns quantity reserved units into a permanent deduction
func (s *SKU) Commit(quantity int) error {
	if quantity <= 0 || quantity > s.ReservedStock || quantity > s.Stock {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot commit %d units from SKU %s holding %d", quantity, s.ID, s.ReservedStock))
	}
	s.Stock -= quantity
	s.ReservedStock -= quantity
	return nil
}

// Availability returns the read projection of the SKU counters
func (s *SKU) Availability() StockAvailability {
	return StockAvailability{
		SKUID:          s.ID,
		TotalStock:     s.Stock,
		ReservedStock:  s.ReservedStock,
		AvailableStock: s.AvailableStock(),
	}
}

// StockAvailability is the read-only projection returned by availability queries
type StockAvailability struct {
	SKUID          uuid.UUID `json:"sku_id"`
	TotalStock     int       `json:"total_stock"`
	ReservedStock  int       `json:"reserved_stock"`
	AvailableStock int       `json:"available_stock"`
}

package inventory

import (
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// Product is the catalog entry that owns one or more SKUs.
// The reservation engine only ever touches IsActive.
type Product struct {
	shared.BaseAggregateRoot
	Name     string
	IsActive bool
}

// NewProduct creates an active product
func NewProduct(name string, now time.Time) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		Name:              name,
		IsActive:          true,
	}, nil
}

// Archive deactivates a depleted product. Archiving an inactive product is a no-op.
func (p *Product) Archive(now time.Time) {
	if !p.IsActive {
		return
	}
	p.IsActive = false
	p.Touch(now)
	p.AddDomainEvent(NewProductArchivedEvent(p.ID, now))
}

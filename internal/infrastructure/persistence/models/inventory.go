package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductModel is the persistence model for a sellable product
type ProductModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null"`
	IsActive bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain()},
		Name:              m.Name,
		IsActive:          m.IsActive,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{Name: p.Name, IsActive: p.IsActive}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// SKUModel is the persistence model for the per-SKU stock ledger row
type SKUModel struct {
	BaseModel
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Code          string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Stock         int       `gorm:"not null;default:0"`
	ReservedStock int       `gorm:"not null;default:0"`
	IsActive      bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SKUModel) TableName() string {
	return "skus"
}

// ToDomain converts the persistence model to a domain SKU
func (m *SKUModel) ToDomain() *inventory.SKU {
	return &inventory.SKU{
		BaseEntity:    m.BaseModel.ToDomain(),
		ProductID:     m.ProductID,
		Code:          m.Code,
		Stock:         m.Stock,
		ReservedStock: m.ReservedStock,
		IsActive:      m.IsActive,
	}
}

// SKUModelFromDomain creates a persistence model from a domain SKU
func SKUModelFromDomain(s *inventory.SKU) *SKUModel {
	m := &SKUModel{
		ProductID:     s.ProductID,
		Code:          s.Code,
		Stock:         s.Stock,
		ReservedStock: s.ReservedStock,
		IsActive:      s.IsActive,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// ReservationModel is the persistence model for a reservation log entry
type ReservationModel struct {
	BaseModel
	SKUID     uuid.UUID `gorm:"column:sku_id;type:uuid;not null;index"`
	OrderID   string    `gorm:"type:varchar(100);not null;index"`
	Quantity  int       `gorm:"not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_reservations_status_expires,priority:1"`
	ExpiresAt time.Time `gorm:"not null;index:idx_reservations_status_expires,priority:2"`
}

// TableName returns the table name for GORM
func (ReservationModel) TableName() string {
	return "reservations"
}

// ToDomain converts the persistence model to a domain Reservation
func (m *ReservationModel) ToDomain() *inventory.Reservation {
	return &inventory.Reservation{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain()},
		SKUID:             m.SKUID,
		OrderID:           m.OrderID,
		Quantity:          m.Quantity,
		Status:            inventory.ReservationStatus(m.Status),
		ExpiresAt:         m.ExpiresAt,
	}
}

// ReservationModelFromDomain creates a persistence model from a domain Reservation
func ReservationModelFromDomain(r *inventory.Reservation) *ReservationModel {
	m := &ReservationModel{
		SKUID:     r.SKUID,
		OrderID:   r.OrderID,
		Quantity:  r.Quantity,
		Status:    string(r.Status),
		ExpiresAt: r.ExpiresAt.UTC(),
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// AllModels returns the models managed by the engine, in dependency order
func AllModels() []any {
	return []any{&ProductModel{}, &SKUModel{}, &ReservationModel{}}
}

package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSKURepository implements inventory.SKURepository using GORM.
// Counter changes are single guarded UPDATE statements evaluated by the store.
type GormSKURepository struct {
	db *gorm.DB
}

// NewGormSKURepository creates a new GormSKURepository
func NewGormSKURepository(db *gorm.DB) *GormSKURepository {
	return &GormSKURepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormSKURepository) WithTx(tx *gorm.DB) *GormSKURepository {
	return &GormSKURepository{db: tx}
}

// FindByIDs finds SKUs by id
func (r *GormSKURepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.SKU, error) {
	if len(ids) == 0 {
		return []inventory.SKU{}, nil
	}
	var skuModels []models.SKUModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id").
		Find(&skuModels).Error; err != nil {
		return nil, translateError("find skus", err)
	}
	skus := make([]inventory.SKU, len(skuModels))
	for i := range skuModels {
		skus[i] = *skuModels[i].ToDomain()
	}
	return skus, nil
}

// Save creates or updates a SKU
func (r *GormSKURepository) Save(ctx context.Context, sku *inventory.SKU) error {
	return translateError("save sku", r.db.WithContext(ctx).Save(models.SKUModelFromDomain(sku)).Error)
}

// IncrementReserved holds quantity units if they are still available
func (r *GormSKURepository) IncrementReserved(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SKUModel{}).
		Where("id = ? AND is_active = ? AND stock - reserved_stock >= ?", id, true, quantity).
		Updates(map[string]any{
			"reserved_stock": gorm.Expr("reserved_stock + ?", quantity),
		})
	if result.Error != nil {
		return false, translateError("increment reserved stock", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ReleaseReserved returns quantity units from reserved to available
func (r *GormSKURepository) ReleaseReserved(ctx context.Context, id uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.SKUModel{}).
		Where("id = ? AND reserved_stock >= ?", id, quantity).
		Updates(map[string]any{
			"reserved_stock": gorm.Expr("reserved_stock - ?", quantity),
		})
	if result.Error != nil {
		return translateError("release reserved stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return ledgerMismatch(id, "release", quantity)
	}
	return nil
}

// CommitReserved removes quantity units from both stock and reserved stock
func (r *GormSKURepository) CommitReserved(ctx context.Context, id uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.SKUModel{}).
		Where("id = ? AND reserved_stock >= ? AND stock >= ?", id, quantity, quantity).
		Updates(map[string]any{
			"stock":          gorm.Expr("stock - ?", quantity),
			"reserved_stock": gorm.Expr("reserved_stock - ?", quantity),
		})
	if result.Error != nil {
		return translateError("commit reserved stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return ledgerMismatch(id, "commit", quantity)
	}
	return nil
}

// ledgerMismatch reports a claimed reservation whose SKU counters cannot absorb it.
// The transaction is rolled back so the reservation stays ACTIVE.
func ledgerMismatch(id uuid.UUID, op string, quantity int) error {
	return shared.NewDomainError(shared.CodeInvalidState,
		fmt.Sprintf("Cannot %s %d units on SKU %s: reserved stock is lower than the reservation", op, quantity, id))
}

var _ inventory.SKURepository = (*GormSKURepository)(nil)

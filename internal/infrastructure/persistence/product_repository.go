package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// depletedCondition matches products that have SKUs and none with stock left to sell
const depletedCondition = `EXISTS (SELECT 1 FROM skus WHERE skus.product_id = products.id)
	AND NOT EXISTS (SELECT 1 FROM skus WHERE skus.product_id = products.id AND skus.stock - skus.reserved_stock > 0)`

// GormProductRepository implements inventory.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: tx}
}

// FindByIDs finds products by id
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	if len(ids) == 0 {
		return []inventory.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translateError("find products", err)
	}
	return toProducts(rows), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	return translateError("save product", r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error)
}

// FindDepletedActive lists active products whose every SKU has nothing available
func (r *GormProductRepository) FindDepletedActive(ctx context.Context, limit int) ([]inventory.Product, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(depletedCondition).
		Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError("find depleted products", err)
	}
	return toProducts(rows), nil
}

// ArchiveIfDepleted deactivates the product in one statement that re-checks
// the depletion condition, so a concurrent restock wins over archival.
func (r *GormProductRepository) ArchiveIfDepleted(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND is_active = ?", id, true).
		Where(depletedCondition).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return false, translateError("archive product", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func toProducts(rows []models.ProductModel) []inventory.Product {
	out := make([]inventory.Product, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ inventory.ProductRepository = (*GormProductRepository)(nil)

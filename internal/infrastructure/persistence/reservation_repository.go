package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// createBatchSize bounds rows per INSERT when persisting a cart
const createBatchSize = 100

// GormReservationRepository implements inventory.ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormReservationRepository) WithTx(tx *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: tx}
}

// FindByID finds a reservation by its ID
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Reservation, error) {
	var model models.ReservationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find reservation", err)
	}
	return model.ToDomain(), nil
}

// FindByOrder finds every reservation of an order, oldest first
func (r *GormReservationRepository) FindByOrder(ctx context.Context, orderID string) ([]inventory.Reservation, error) {
	return r.find(ctx, "find order reservations", r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC"))
}

// FindActiveByOrder finds ACTIVE reservations of an order in SKU order
func (r *GormReservationRepository) FindActiveByOrder(ctx context.Context, orderID string) ([]inventory.Reservation, error) {
	return r.find(ctx, "find active order reservations", r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, string(inventory.ReservationStatusActive)).
		Order("sku_id ASC, id ASC"))
}

// FindExpired finds ACTIVE reservations whose deadline is before now, oldest deadline first
func (r *GormReservationRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]inventory.Reservation, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(inventory.ReservationStatusActive), now.UTC()).
		Order("expires_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.find(ctx, "find expired reservations", query)
}

// CountExpired counts ACTIVE reservations whose deadline is before now
func (r *GormReservationRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("status = ? AND expires_at < ?", string(inventory.ReservationStatusActive), now.UTC()).
		Count(&count).Error; err != nil {
		return 0, translateError("count expired reservations", err)
	}
	return count, nil
}

// CreateBatch inserts new reservations
func (r *GormReservationRepository) CreateBatch(ctx context.Context, reservations []*inventory.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	rows := make([]*models.ReservationModel, len(reservations))
	for i, res := range reservations {
		rows[i] = models.ReservationModelFromDomain(res)
	}
	return translateError("create reservations", r.db.WithContext(ctx).CreateInBatches(rows, createBatchSize).Error)
}

// TransitionFromActive moves the reservation out of ACTIVE with a status guard.
// Exactly one of any set of concurrent callers observes true.
func (r *GormReservationRepository) TransitionFromActive(ctx context.Context, id uuid.UUID, to inventory.ReservationStatus, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("id = ? AND status = ?", id, string(inventory.ReservationStatusActive)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return false, translateError("transition reservation", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SumActiveQuantity sums ACTIVE reservation quantities of a SKU
func (r *GormReservationRepository) SumActiveQuantity(ctx context.Context, skuID uuid.UUID) (int, error) {
	var total int
	if err := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("sku_id = ? AND status = ?", skuID, string(inventory.ReservationStatusActive)).
		Scan(&total).Error; err != nil {
		return 0, translateError("sum active reservations", err)
	}
	return total, nil
}

func (r *GormReservationRepository) find(_ context.Context, op string, query *gorm.DB) ([]inventory.Reservation, error) {
	var rows []models.ReservationModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(op, err)
	}
	out := make([]inventory.Reservation, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var _ inventory.ReservationRepository = (*GormReservationRepository)(nil)

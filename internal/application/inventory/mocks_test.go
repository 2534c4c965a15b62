package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockSKURepository is a mock implementation of inventory.SKURepository
type MockSKURepository struct {
	mock.Mock
}

func (m *MockSKURepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.SKU, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.SKU), args.Error(1)
}

func (m *MockSKURepository) Save(ctx context.Context, sku *inventory.SKU) error {
	return m.Called(ctx, sku).Error(0)
}

func (m *MockSKURepository) IncrementReserved(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockSKURepository) ReleaseReserved(ctx context.Context, id uuid.UUID, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func (m *MockSKURepository) CommitReserved(ctx context.Context, id uuid.UUID, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}

// MockReservationRepository is a mock implementation of inventory.ReservationRepository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByOrder(ctx context.Context, orderID string) ([]inventory.Reservation, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindActiveByOrder(ctx context.Context, orderID string) ([]inventory.Reservation, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]inventory.Reservation, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Reservation), args.Error(1)
}

func (m *MockReservationRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReservationRepository) CreateBatch(ctx context.Context, reservations []*inventory.Reservation) error {
	return m.Called(ctx, reservations).Error(0)
}

func (m *MockReservationRepository) TransitionFromActive(ctx context.Context, id uuid.UUID, to inventory.ReservationStatus, now time.Time) (bool, error) {
	args := m.Called(ctx, id, to, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) SumActiveQuantity(ctx context.Context, skuID uuid.UUID) (int, error) {
	args := m.Called(ctx, skuID)
	return args.Int(0), args.Error(1)
}

// MockProductRepository is a mock implementation of inventory.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) FindDepletedActive(ctx context.Context, limit int) ([]inventory.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Product), args.Error(1)
}

func (m *MockProductRepository) ArchiveIfDepleted(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

// MockAvailabilityCache is a mock implementation of AvailabilityCache
type MockAvailabilityCache struct {
	mock.Mock
}

func (m *MockAvailabilityCache) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]inventory.StockAvailability, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]inventory.StockAvailability), args.Error(1)
}

func (m *MockAvailabilityCache) SetMany(ctx context.Context, entries []inventory.StockAvailability, ttl time.Duration) error {
	return m.Called(ctx, entries, ttl).Error(0)
}

func (m *MockAvailabilityCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// fastPolicy keeps retry tests quick
func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:         3,
		AttemptTimeout:      time.Second,
		InitialInterval:     time.Millisecond,
		MaxInterval:         2 * time.Millisecond,
		Multiplier:          2,
		RandomizationFactor: 0.5,
	}
}

func newTestSKU(productID uuid.UUID, stock, reserved int) inventory.SKU {
	sku, _ := inventory.NewSKU(productID, "SKU-"+uuid.NewString()[:6], stock, testNow)
	sku.ReservedStock = reserved
	return *sku
}

func newTestProduct() inventory.Product {
	p, _ := inventory.NewProduct("Trail shoe", testNow)
	return *p
}

func newActiveReservation(skuID uuid.UUID, orderID string, qty int) inventory.Reservation {
	r, _ := inventory.NewReservation(skuID, orderID, qty, time.Minute, testNow.Add(-time.Hour))
	return *r
}

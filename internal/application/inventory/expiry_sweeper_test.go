package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSweeperFixture(batchSize int) (*ExpirySweeper, *MockSKURepository, *MockReservationRepository) {
	skuRepo := new(MockSKURepository)
	reservationRepo := new(MockReservationRepository)
	scope := NewNoOpTransactionScope(skuRepo, reservationRepo, new(MockProductRepository))
	sweeper := NewExpirySweeper(scope, reservationRepo, fastPolicy(), batchSize, zap.NewNop())
	sweeper.SetClock(fixedClock)
	return sweeper, skuRepo, reservationRepo
}

func TestExpirySweeper_CleanupExpiredReservations(t *testing.T) {
	sweeper, skuRepo, reservationRepo := newSweeperFixture(10)
	publisher := new(MockEventPublisher)
	cache := new(MockAvailabilityCache)
	sweeper.SetEventPublisher(publisher)
	sweeper.SetAvailabilityCache(cache)

	sku := uuid.New()
	overdue := newActiveReservation(sku, "order-1", 2)
	confirmedElsewhere := newActiveReservation(sku, "order-2", 1)

	reservationRepo.On("FindExpired", mock.Anything, testNow, 10).
		Return([]inventory.Reservation{overdue, confirmedElsewhere}, nil)
	reservationRepo.On("TransitionFromActive", mock.Anything, overdue.ID, inventory.ReservationStatusExpired, testNow).Return(true, nil)
	reservationRepo.On("TransitionFromActive", mock.Anything, confirmedElsewhere.ID, inventory.ReservationStatusExpired, testNow).Return(false, nil)
	skuRepo.On("ReleaseReserved", mock.Anything, sku, 2).Return(nil)
	cache.On("Invalidate", mock.Anything, []uuid.UUID{sku}).Return(nil)
	publisher.On("Publish", mock.Anything, eventsOfType(inventory.EventTypeReservationExpired, 1)).Return(nil)

	result, err := sweeper.CleanupExpiredReservations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.CleanedCount)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, testNow, result.ProcessedAt)
	skuRepo.AssertNotCalled(t, "ReleaseReserved", mock.Anything, sku, 1)
	reservationRepo.AssertExpectations(t)
	skuRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestExpirySweeper_LoopsOverFullBatches(t *testing.T) {
	sweeper, skuRepo, reservationRepo := newSweeperFixture(2)

	first := []inventory.Reservation{
		newActiveReservation(uuid.New(), "order-1", 1),
		newActiveReservation(uuid.New(), "order-2", 1),
	}
	second := []inventory.Reservation{newActiveReservation(uuid.New(), "order-3", 1)}

	reservationRepo.On("FindExpired", mock.Anything, testNow, 2).Return(first, nil).Once()
	reservationRepo.On("FindExpired", mock.Anything, testNow, 2).Return(second, nil).Once()
	reservationRepo.On("TransitionFromActive", mock.Anything, mock.Anything, inventory.ReservationStatusExpired, testNow).Return(true, nil)
	skuRepo.On("ReleaseReserved", mock.Anything, mock.Anything, 1).Return(nil)

	result, err := sweeper.CleanupExpiredReservations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.CleanedCount)
	reservationRepo.AssertNumberOfCalls(t, "FindExpired", 2)
	skuRepo.AssertNumberOfCalls(t, "ReleaseReserved", 3)
}

func TestExpirySweeper_StopsWhenBatchMakesNoProgress(t *testing.T) {
	sweeper, _, reservationRepo := newSweeperFixture(1)
	stuck := newActiveReservation(uuid.New(), "order-1", 1)

	reservationRepo.On("FindExpired", mock.Anything, testNow, 1).Return([]inventory.Reservation{stuck}, nil)
	reservationRepo.On("TransitionFromActive", mock.Anything, stuck.ID, inventory.ReservationStatusExpired, testNow).
		Return(false, shared.ErrInvalidState)

	result, err := sweeper.CleanupExpiredReservations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.CleanedCount)
	reservationRepo.AssertNumberOfCalls(t, "FindExpired", 2)
}

func TestExpirySweeper_ReleaseFailureIsCountedAndLeftForNextRun(t *testing.T) {
	sweeper, skuRepo, reservationRepo := newSweeperFixture(10)
	r := newActiveReservation(uuid.New(), "order-1", 3)

	reservationRepo.On("FindExpired", mock.Anything, testNow, 10).Return([]inventory.Reservation{r}, nil)
	reservationRepo.On("TransitionFromActive", mock.Anything, r.ID, inventory.ReservationStatusExpired, testNow).Return(true, nil)
	skuRepo.On("ReleaseReserved", mock.Anything, r.SKUID, 3).Return(shared.ErrInvalidState)

	result, err := sweeper.CleanupExpiredReservations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.CleanedCount)
}

func TestExpirySweeper_FindError(t *testing.T) {
	sweeper, _, reservationRepo := newSweeperFixture(10)
	reservationRepo.On("FindExpired", mock.Anything, testNow, 10).Return(nil, shared.ErrSystem)

	result, err := sweeper.CleanupExpiredReservations(context.Background())

	assert.ErrorIs(t, err, shared.ErrSystem)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.CleanedCount)
}

func TestExpirySweeper_NothingToDo(t *testing.T) {
	sweeper, _, reservationRepo := newSweeperFixture(10)
	publisher := new(MockEventPublisher)
	sweeper.SetEventPublisher(publisher)
	reservationRepo.On("FindExpired", mock.Anything, testNow, 10).Return([]inventory.Reservation{}, nil)

	result, err := sweeper.CleanupExpiredReservations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, CleanupResult{ProcessedAt: testNow}, *result)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestExpirySweeper_PendingExpiredCount(t *testing.T) {
	sweeper, _, reservationRepo := newSweeperFixture(10)
	reservationRepo.On("CountExpired", mock.Anything, testNow).Return(int64(4), nil)

	count, err := sweeper.PendingExpiredCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

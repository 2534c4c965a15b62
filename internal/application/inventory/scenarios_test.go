package inventory_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appinv "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// engine wires the services over a real sqlite store
type engine struct {
	db           *persistence.Database
	reservations *appinv.ReservationService
	sweeper      *appinv.ExpirySweeper
	archival     *appinv.ArchivalService
	skus         *persistence.GormSKURepository
	ledger       *persistence.GormReservationRepository
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "inventory.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, persistence.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	policy := appinv.RetryPolicy{
		MaxAttempts:     3,
		AttemptTimeout:  30 * time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
	ledger := persistence.NewGormReservationRepository(db.DB)
	scope := db.NewTransactionScope()

	return &engine{
		db:           db,
		reservations: appinv.NewReservationService(scope, ledger, policy, 5*time.Minute, zap.NewNop()),
		sweeper:      appinv.NewExpirySweeper(scope, ledger, policy, 2, zap.NewNop()),
		archival:     appinv.NewArchivalService(persistence.NewGormProductRepository(db.DB), 10, zap.NewNop()),
		skus:         persistence.NewGormSKURepository(db.DB),
		ledger:       ledger,
	}
}

func (e *engine) seed(t *testing.T, stock int) *inventory.SKU {
	t.Helper()
	ctx := context.Background()

	product, err := inventory.NewProduct("Trail shoe", time.Now())
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormProductRepository(e.db.DB).Save(ctx, product))

	sku, err := inventory.NewSKU(product.ID, "SKU-"+uuid.NewString()[:8], stock, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.skus.Save(ctx, sku))
	return sku
}

func (e *engine) load(t *testing.T, id uuid.UUID) inventory.SKU {
	t.Helper()
	skus, err := e.skus.FindByIDs(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, skus, 1)
	return skus[0]
}

// assertLedger checks the counters and that reserved equals the sum of ACTIVE holds
func (e *engine) assertLedger(t *testing.T, id uuid.UUID, stock, reserved int) {
	t.Helper()
	sku := e.load(t, id)
	assert.Equal(t, stock, sku.Stock, "stock")
	assert.Equal(t, reserved, sku.ReservedStock, "reserved")

	active, err := e.ledger.SumActiveQuantity(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, sku.ReservedStock, active, "reserved must equal active holds")
}

func reserve(orderID string, skuID uuid.UUID, qty int) appinv.ReserveInventoryRequest {
	return appinv.ReserveInventoryRequest{
		OrderID: orderID,
		Items:   []appinv.ReserveItem{{SKUID: skuID, Quantity: qty}},
	}
}

func TestScenario_ReserveUntilSoldOut(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	sku := e.seed(t, 5)

	first, err := e.reservations.ReserveInventory(ctx, reserve("order-a", sku.ID, 5))
	require.NoError(t, err)
	assert.True(t, first.Success)

	second, err := e.reservations.ReserveInventory(ctx, reserve("order-b", sku.ID, 1))
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Equal(t, []inventory.Shortfall{{SKUID: sku.ID, Requested: 1, Available: 0}}, second.InsufficientStock)

	e.assertLedger(t, sku.ID, 5, 5)
}

func TestScenario_ConfirmDeductsStock(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	sku := e.seed(t, 5)

	_, err := e.reservations.ReserveInventory(ctx, reserve("order-a", sku.ID, 3))
	require.NoError(t, err)

	confirmed, err := e.reservations.ConfirmReservation(ctx, "order-a")
	require.NoError(t, err)
	assert.Equal(t, appinv.TransitionApplied, confirmed.Outcome)
	e.assertLedger(t, sku.ID, 2, 0)

	again, err := e.reservations.ConfirmReservation(ctx, "order-a")
	require.NoError(t, err)
	assert.Equal(t, appinv.TransitionAlreadyProcessed, again.Outcome)

	cancelled, err := e.reservations.CancelReservation(ctx, "order-a")
	require.NoError(t, err)
	assert.Equal(t, appinv.TransitionAlreadyProcessed, cancelled.Outcome)
	e.assertLedger(t, sku.ID, 2, 0)

	list, err := e.reservations.ListOrderReservations(ctx, "order-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "CONFIRMED", list[0].Status)
}

func TestScenario_CancelRestoresAvailability(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	sku := e.seed(t, 4)

	_, err := e.reservations.ReserveInventory(ctx, reserve("order-a", sku.ID, 4))
	require.NoError(t, err)

	result, err := e.reservations.CancelReservation(ctx, "order-a")
	require.NoError(t, err)
	assert.True(t, result.Success)
	e.assertLedger(t, sku.ID, 4, 0)

	next, err := e.reservations.ReserveInventory(ctx, reserve("order-b", sku.ID, 4))
	require.NoError(t, err)
	assert.True(t, next.Success)
}

func TestScenario_ExpiredHoldsAreReleased(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	sku := e.seed(t, 5)

	for _, order := range []string{"order-a", "order-b", "order-c"} {
		result, err := e.reservations.ReserveInventory(ctx, reserve(order, sku.ID, 1))
		require.NoError(t, err)
		require.True(t, result.Success)
	}
	e.assertLedger(t, sku.ID, 5, 3)

	notYet, err := e.sweeper.CleanupExpiredReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, notYet.CleanedCount)

	e.sweeper.SetClock(func() time.Time { return time.Now().Add(10 * time.Minute) })
	pending, err := e.sweeper.PendingExpiredCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pending)

	result, err := e.sweeper.CleanupExpiredReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.CleanedCount)
	e.assertLedger(t, sku.ID, 5, 0)

	confirmed, err := e.reservations.ConfirmReservation(ctx, "order-a")
	require.NoError(t, err)
	assert.Equal(t, appinv.TransitionAlreadyProcessed, confirmed.Outcome)
	e.assertLedger(t, sku.ID, 5, 0)
}

func TestScenario_MultiLineReserveIsAllOrNothing(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	plenty := e.seed(t, 10)
	scarce := e.seed(t, 1)

	result, err := e.reservations.ReserveInventory(ctx, appinv.ReserveInventoryRequest{
		OrderID: "order-a",
		Items: []appinv.ReserveItem{
			{SKUID: plenty.ID, Quantity: 3},
			{SKUID: scarce.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	e.assertLedger(t, plenty.ID, 10, 0)
	e.assertLedger(t, scarce.ID, 1, 0)

	list, err := e.reservations.ListOrderReservations(ctx, "order-a")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestScenario_ConcurrentReservesNeverOversell(t *testing.T) {
	tests := []struct {
		name   string
		stock  int
		buyers int
	}{
		{"last unit", 1, 8},
		{"small pool", 7, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t)
			sku := e.seed(t, tt.stock)

			var (
				wg         sync.WaitGroup
				mu         sync.Mutex
				successes  int
				shortfalls int
			)
			for i := 0; i < tt.buyers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					result, err := e.reservations.ReserveInventory(context.Background(),
						reserve(uuid.NewString(), sku.ID, 1))
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					defer mu.Unlock()
					if result.Success {
						successes++
					} else {
						shortfalls++
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, tt.stock, successes)
			assert.Equal(t, tt.buyers-tt.stock, shortfalls)
			e.assertLedger(t, sku.ID, tt.stock, tt.stock)
		})
	}
}

func TestScenario_SweeperRacesConfirm(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	sku := e.seed(t, 5)

	_, err := e.reservations.ReserveInventory(ctx, reserve("order-a", sku.ID, 2))
	require.NoError(t, err)
	e.sweeper.SetClock(func() time.Time { return time.Now().Add(time.Hour) })

	var (
		wg        sync.WaitGroup
		confirmed *appinv.TransitionResult
		swept     *appinv.CleanupResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		r, err := e.reservations.ConfirmReservation(ctx, "order-a")
		assert.NoError(t, err)
		confirmed = r
	}()
	go func() {
		defer wg.Done()
		r, err := e.sweeper.CleanupExpiredReservations(ctx)
		assert.NoError(t, err)
		swept = r
	}()
	wg.Wait()

	require.NotNil(t, confirmed)
	require.NotNil(t, swept)
	list, err := e.reservations.ListOrderReservations(ctx, "order-a")
	require.NoError(t, err)
	require.Len(t, list, 1)

	if confirmed.Outcome == appinv.TransitionApplied {
		assert.Equal(t, 0, swept.CleanedCount)
		assert.Equal(t, "CONFIRMED", list[0].Status)
		e.assertLedger(t, sku.ID, 3, 0)
	} else {
		assert.Equal(t, 1, swept.CleanedCount)
		assert.Equal(t, "EXPIRED", list[0].Status)
		e.assertLedger(t, sku.ID, 5, 0)
	}
}

func TestScenario_ArchivedProductsRejectReserves(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	sold := e.seed(t, 2)
	onSale := e.seed(t, 2)

	_, err := e.reservations.ReserveInventory(ctx, reserve("order-a", sold.ID, 2))
	require.NoError(t, err)

	result, err := e.archival.ArchiveZeroStockProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ArchivedCount)

	// archival leaves holds alone
	e.assertLedger(t, sold.ID, 2, 2)
	_, err = e.reservations.CancelReservation(ctx, "order-a")
	require.NoError(t, err)

	_, err = e.reservations.ReserveInventory(ctx, reserve("order-b", sold.ID, 1))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	ok, err := e.reservations.ReserveInventory(ctx, reserve("order-c", onSale.ID, 1))
	require.NoError(t, err)
	assert.True(t, ok.Success)

	again, err := e.archival.ArchiveZeroStockProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ArchivedCount)
}

func TestScenario_ReserveRejectsUnknownSKU(t *testing.T) {
	e := newEngine(t)

	_, err := e.reservations.ReserveInventory(context.Background(), reserve("order-a", uuid.New(), 1))

	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

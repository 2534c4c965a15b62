//go:build integration

package persistence

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	appinv "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// newPostgresDatabase starts a disposable PostgreSQL container and applies the
// embedded migrations to it.
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("inventory_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "inventory_test",
		SSLMode:      "disable",
		MaxOpenConns: 16,
		MaxIdleConns: 4,
	}, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)

	return db
}

func TestPostgres_LedgerConstraints(t *testing.T) {
	db := newPostgresDatabase(t)
	_, sku := seedSKU(t, db.DB, 2, 0)

	err := db.DB.Exec("UPDATE skus SET reserved_stock = 3 WHERE id = ?", sku.ID).Error
	assert.Error(t, err, "reserved_stock above stock must be rejected")

	err = db.DB.Exec("UPDATE skus SET reserved_stock = -1 WHERE id = ?", sku.ID).Error
	assert.Error(t, err, "negative reserved_stock must be rejected")

	ok, err := NewGormSKURepository(db.DB).IncrementReserved(context.Background(), sku.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgres_ConcurrentReservesNeverOversell(t *testing.T) {
	db := newPostgresDatabase(t)
	_, sku := seedSKU(t, db.DB, 5, 0)

	ledger := NewGormReservationRepository(db.DB)
	policy := appinv.RetryPolicy{
		MaxAttempts:     10,
		AttemptTimeout:  10 * time.Second,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
	}
	service := appinv.NewReservationService(db.NewTransactionScope(), ledger, policy, 5*time.Minute, zap.NewNop())

	const workers = 12
	var reserved atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := service.ReserveInventory(context.Background(), appinv.ReserveInventoryRequest{
				OrderID: "ORD-" + uuid.NewString(),
				Items:   []appinv.ReserveItem{{SKUID: sku.ID, Quantity: 1}},
			})
			if err == nil && result.Success {
				reserved.Add(1)
			}
		}()
	}
	wg.Wait()

	after := loadSKU(t, db.DB, sku.ID)
	assert.LessOrEqual(t, int(reserved.Load()), 5)
	assert.Equal(t, int(reserved.Load()), after.ReservedStock)

	sum, err := ledger.SumActiveQuantity(context.Background(), sku.ID)
	require.NoError(t, err)
	assert.Equal(t, after.ReservedStock, sum)
}

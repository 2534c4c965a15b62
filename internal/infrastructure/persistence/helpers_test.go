package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newMockGormDB returns a GORM handle on the postgres dialector backed by sqlmock
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// newSQLiteDatabase opens a migrated sqlite file database for behavioural tests
func newSQLiteDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "inventory.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedSKU stores an active product with one SKU holding stock/reserved units
func seedSKU(t *testing.T, db *gorm.DB, stock, reserved int) (*inventory.Product, *inventory.SKU) {
	t.Helper()
	ctx := context.Background()

	product, err := inventory.NewProduct("Trail shoe", testNow)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(ctx, product))

	sku := seedSKUFor(t, db, product.ID, stock, reserved)
	return product, sku
}

func seedSKUFor(t *testing.T, db *gorm.DB, productID uuid.UUID, stock, reserved int) *inventory.SKU {
	t.Helper()

	sku, err := inventory.NewSKU(productID, "SKU-"+uuid.NewString()[:8], stock, testNow)
	require.NoError(t, err)
	sku.ReservedStock = reserved
	require.NoError(t, NewGormSKURepository(db).Save(context.Background(), sku))
	return sku
}

func loadSKU(t *testing.T, db *gorm.DB, id uuid.UUID) inventory.SKU {
	t.Helper()

	skus, err := NewGormSKURepository(db).FindByIDs(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, skus, 1)
	return skus[0]
}

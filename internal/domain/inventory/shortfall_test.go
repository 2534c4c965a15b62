package inventory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLines(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	t.Run("folds repeated skus keeping order", func(t *testing.T) {
		merged, err := MergeLines([]ReservationLine{
			{SKUID: a, Quantity: 1},
			{SKUID: b, Quantity: 2},
			{SKUID: a, Quantity: 3},
		})
		require.NoError(t, err)
		assert.Equal(t, []ReservationLine{{SKUID: a, Quantity: 4}, {SKUID: b, Quantity: 2}}, merged)
		assert.Equal(t, []uuid.UUID{a, b}, SKUIDs(merged))
	})

	t.Run("rejects empty request", func(t *testing.T) {
		_, err := MergeLines(nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := MergeLines([]ReservationLine{{SKUID: a, Quantity: 0}})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects nil sku", func(t *testing.T) {
		_, err := MergeLines([]ReservationLine{{SKUID: uuid.Nil, Quantity: 1}})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestCheckAvailability(t *testing.T) {
	full := createTestSKU(t, 5)
	empty := createTestSKU(t, 5)
	require.NoError(t, empty.Hold(5))
	skus := map[uuid.UUID]*SKU{full.ID: full, empty.ID: empty}

	t.Run("no shortfall when covered", func(t *testing.T) {
		shortfalls, err := CheckAvailability([]ReservationLine{{SKUID: full.ID, Quantity: 5}}, skus)
		require.NoError(t, err)
		assert.Empty(t, shortfalls)
	})

	t.Run("reports every short sku", func(t *testing.T) {
		shortfalls, err := CheckAvailability([]ReservationLine{
			{SKUID: full.ID, Quantity: 6},
			{SKUID: empty.ID, Quantity: 1},
		}, skus)
		require.NoError(t, err)
		assert.Equal(t, []Shortfall{
			{SKUID: full.ID, Requested: 6, Available: 5},
			{SKUID: empty.ID, Requested: 1, Available: 0},
		}, shortfalls)
	})

	t.Run("unknown sku is a validation error", func(t *testing.T) {
		_, err := CheckAvailability([]ReservationLine{{SKUID: uuid.New(), Quantity: 1}}, skus)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("inactive sku is a validation error", func(t *testing.T) {
		inactive := createTestSKU(t, 5)
		inactive.IsActive = false
		_, err := CheckAvailability([]ReservationLine{{SKUID: inactive.ID, Quantity: 1}},
			map[uuid.UUID]*SKU{inactive.ID: inactive})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestProduct_Archive(t *testing.T) {
	p, err := NewProduct("Tee", testNow)
	require.NoError(t, err)

	p.Archive(testNow)
	assert.False(t, p.IsActive)
	require.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeProductArchived, p.GetDomainEvents()[0].EventType())

	p.Archive(testNow)
	assert.Len(t, p.GetDomainEvents(), 1)
}

package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	appinv "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_SQL(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "skus" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := NewGormTransactionScope(db).ExecuteSerializable(context.Background(), func(repos appinv.TransactionalRepositories) error {
			_, err := repos.SKURepo().IncrementReserved(context.Background(), uuid.New(), 1)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit-time serialization failure becomes transient conflict", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "reservations" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001"})

		err := NewGormTransactionScope(db).Execute(context.Background(), func(repos appinv.TransactionalRepositories) error {
			_, err := repos.ReservationRepo().TransitionFromActive(context.Background(), uuid.New(), inventory.ReservationStatusCancelled, testNow)
			return err
		})
		assert.ErrorIs(t, err, shared.ErrTransientConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := NewGormTransactionScope(db).Execute(context.Background(), func(appinv.TransactionalRepositories) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionScope_SQLiteRollback(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	_, sku := seedSKU(t, db.DB, 5, 0)

	err := db.NewTransactionScope().ExecuteSerializable(ctx, func(repos appinv.TransactionalRepositories) error {
		held, err := repos.SKURepo().IncrementReserved(ctx, sku.ID, 2)
		require.NoError(t, err)
		require.True(t, held)

		r, err := inventory.NewReservation(sku.ID, "order-1", 2, time.Minute, testNow)
		require.NoError(t, err)
		if err := repos.ReservationRepo().CreateBatch(ctx, []*inventory.Reservation{r}); err != nil {
			return err
		}
		return shared.NewDomainError(shared.CodeInvalidInput, "abort")
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	got := loadSKU(t, db.DB, sku.ID)
	assert.Equal(t, 0, got.ReservedStock)

	reservations, err := NewGormReservationRepository(db.DB).FindByOrder(ctx, "order-1")
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

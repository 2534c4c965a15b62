package scheduler

import (
	"context"

	appinv "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Maintenance job names
const (
	JobCleanupExpiredReservations = "cleanup_expired_reservations"
	JobArchiveZeroStockProducts   = "archive_zero_stock_products"
)

// ExpiryCleaner releases overdue reservations
type ExpiryCleaner interface {
	CleanupExpiredReservations(ctx context.Context) (*appinv.CleanupResult, error)
	PendingExpiredCount(ctx context.Context) (int64, error)
}

// ProductArchiver deactivates depleted products
type ProductArchiver interface {
	ArchiveZeroStockProducts(ctx context.Context) (*appinv.ArchiveResult, error)
}

// CleanupJob runs one sweeper pass and records how many overdue holds remain
func CleanupJob(cleaner ExpiryCleaner, metrics *telemetry.ReservationMetrics, logger *zap.Logger) JobFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context) error {
		result, err := cleaner.CleanupExpiredReservations(ctx)
		if err != nil {
			return err
		}
		pending, err := cleaner.PendingExpiredCount(ctx)
		if err != nil {
			logger.Warn("Failed to count pending expired reservations", zap.Error(err))
			return nil
		}
		metrics.RecordPendingExpired(ctx, pending)
		if pending > 0 {
			logger.Info("Expired reservations left for next run",
				zap.Int64("pending", pending),
				zap.Int("failed", result.Failed),
			)
		}
		return nil
	}
}

// ArchivalJob runs one zero-stock archival pass
func ArchivalJob(archiver ProductArchiver) JobFunc {
	return func(ctx context.Context) error {
		_, err := archiver.ArchiveZeroStockProducts(ctx)
		return err
	}
}

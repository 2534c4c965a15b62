package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultSweepBatchSize bounds how many expired reservations one query loads
const DefaultSweepBatchSize = 500

// ExpirySweeper releases ACTIVE reservations whose deadline has passed.
// It is invoked by an external scheduler and is safe to run concurrently with
// confirm, cancel and other sweeper instances.
type ExpirySweeper struct {
	txScope         TransactionScope
	reservationRepo inventory.ReservationRepository
	policy          RetryPolicy
	batchSize       int
	logger          *zap.Logger

	eventPublisher shared.EventPublisher
	cache          AvailabilityCache
	metrics        *telemetry.ReservationMetrics
	now            func() time.Time
}

// NewExpirySweeper creates a new ExpirySweeper
func NewExpirySweeper(
	txScope TransactionScope,
	reservationRepo inventory.ReservationRepository,
	policy RetryPolicy,
	batchSize int,
	logger *zap.Logger,
) *ExpirySweeper {
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpirySweeper{
		txScope:         txScope,
		reservationRepo: reservationRepo,
		policy:          policy.normalized(),
		batchSize:       batchSize,
		logger:          logger,
		now:             time.Now,
	}
}

// SetEventPublisher sets the publisher for ReservationExpired events
func (s *ExpirySweeper) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetAvailabilityCache sets the cache invalidated after releases
func (s *ExpirySweeper) SetAvailabilityCache(cache AvailabilityCache) {
	s.cache = cache
}

// SetMetrics sets the reservation metrics recorder
func (s *ExpirySweeper) SetMetrics(metrics *telemetry.ReservationMetrics) {
	s.metrics = metrics
}

// SetClock overrides the time source
func (s *ExpirySweeper) SetClock(now func() time.Time) {
	s.now = now
}

// CleanupExpiredReservations expires every overdue ACTIVE reservation.
//
// Rows claimed first by confirm or cancel count as Skipped. A row that fails
// is logged, counted as Failed and left for the next run.
func (s *ExpirySweeper) CleanupExpiredReservations(ctx context.Context) (*CleanupResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sweeper", "cleanup_expired")
	defer span.End()

	cutoff := s.now()
	result := &CleanupResult{ProcessedAt: cutoff}
	seen := make(map[uuid.UUID]struct{})
	var released []*inventory.Reservation

	for {
		batch, err := s.reservationRepo.FindExpired(ctx, cutoff, s.batchSize)
		if err != nil {
			telemetry.RecordError(span, err)
			s.logger.Error("Failed to find expired reservations", zap.Error(err))
			return result, err
		}

		progressed := false
		for i := range batch {
			r := &batch[i]
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			progressed = true

			expired, err := s.expireOne(ctx, r)
			switch {
			case err != nil:
				result.Failed++
				s.logger.Error("Failed to expire reservation",
					zap.String("reservation_id", r.ID.String()),
					zap.String("order_id", r.OrderID),
					zap.Error(err),
				)
			case expired:
				result.CleanedCount++
				released = append(released, r)
			default:
				result.Skipped++
			}
		}

		if len(batch) < s.batchSize || !progressed || ctx.Err() != nil {
			break
		}
	}

	if len(released) > 0 {
		skuIDs := make([]uuid.UUID, len(released))
		for i, r := range released {
			skuIDs[i] = r.SKUID
		}
		invalidateAvailability(ctx, s.cache, s.logger, skuIDs)
		publishReservationEvents(ctx, s.eventPublisher, s.logger, released)
		s.metrics.RecordTransition(ctx, inventory.ReservationStatusExpired.String(), len(released))
	}

	telemetry.SetAttributes(span, "cleaned", result.CleanedCount, "skipped", result.Skipped, "failed", result.Failed)
	if result.CleanedCount+result.Skipped+result.Failed == 0 {
		s.logger.Debug("No expired reservations found")
	} else {
		s.logger.Info("Completed expired reservation cleanup",
			zap.Int("cleaned", result.CleanedCount),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

// expireOne claims one reservation and returns its quantity to the SKU.
// Returns false when another operation already moved it out of ACTIVE.
func (s *ExpirySweeper) expireOne(ctx context.Context, r *inventory.Reservation) (bool, error) {
	var expired bool
	_, err := s.policy.Run(ctx, func(ctx context.Context) error {
		expired = false
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			now := s.now()
			claimed, err := repos.ReservationRepo().TransitionFromActive(ctx, r.ID, inventory.ReservationStatusExpired, now)
			if err != nil || !claimed {
				return err
			}
			if err := repos.SKURepo().ReleaseReserved(ctx, r.SKUID, r.Quantity); err != nil {
				return err
			}
			r.Expire(now)
			expired = true
			return nil
		})
	}, func(attempt int, wait time.Duration, err error) {
		s.metrics.RecordRetry(ctx, "expire")
	})
	return expired, err
}

// PendingExpiredCount returns how many ACTIVE reservations are overdue now
func (s *ExpirySweeper) PendingExpiredCount(ctx context.Context) (int64, error) {
	return s.reservationRepo.CountExpired(ctx, s.now())
}

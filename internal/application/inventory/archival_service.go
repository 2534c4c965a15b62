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

// DefaultArchiveBatchSize bounds how many candidate products one query loads
const DefaultArchiveBatchSize = 200

// ArchivalService deactivates products that have nothing left to sell.
// It is best effort: a product archived while stock is being restocked is
// reactivated manually, and no reservation state is ever touched.
type ArchivalService struct {
	productRepo inventory.ProductRepository
	batchSize   int
	logger      *zap.Logger

	eventPublisher shared.EventPublisher
	metrics        *telemetry.ReservationMetrics
	now            func() time.Time
}

// NewArchivalService creates a new ArchivalService
func NewArchivalService(productRepo inventory.ProductRepository, batchSize int, logger *zap.Logger) *ArchivalService {
	if batchSize <= 0 {
		batchSize = DefaultArchiveBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchivalService{
		productRepo: productRepo,
		batchSize:   batchSize,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the publisher for ProductArchived events
func (s *ArchivalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder
func (s *ArchivalService) SetMetrics(metrics *telemetry.ReservationMetrics) {
	s.metrics = metrics
}

// SetClock overrides the time source
func (s *ArchivalService) SetClock(now func() time.Time) {
	s.now = now
}

// ArchiveZeroStockProducts deactivates every active product whose SKUs all
// have zero or negative available stock.
func (s *ArchivalService) ArchiveZeroStockProducts(ctx context.Context) (*ArchiveResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "archival", "archive_zero_stock")
	defer span.End()

	now := s.now()
	result := &ArchiveResult{ProcessedAt: now}
	seen := make(map[uuid.UUID]struct{})
	var events []shared.DomainEvent

	for {
		candidates, err := s.productRepo.FindDepletedActive(ctx, s.batchSize)
		if err != nil {
			telemetry.RecordError(span, err)
			s.logger.Error("Failed to find depleted products", zap.Error(err))
			return result, err
		}

		progressed := false
		for i := range candidates {
			p := &candidates[i]
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			progressed = true

			archived, err := s.productRepo.ArchiveIfDepleted(ctx, p.ID, now)
			switch {
			case err != nil:
				result.Failed++
				s.logger.Warn("Failed to archive product",
					zap.String("product_id", p.ID.String()),
					zap.Error(err),
				)
			case archived:
				result.ArchivedCount++
				p.Archive(now)
				events = append(events, p.GetDomainEvents()...)
				p.ClearDomainEvents()
			default:
				result.Skipped++
			}
		}

		if len(candidates) < s.batchSize || !progressed || ctx.Err() != nil {
			break
		}
	}

	if len(events) > 0 && s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish product archived events", zap.Error(err))
		}
	}
	s.metrics.RecordArchived(ctx, result.ArchivedCount)

	telemetry.SetAttributes(span, "archived", result.ArchivedCount, "skipped", result.Skipped)
	if result.ArchivedCount > 0 || result.Failed > 0 {
		s.logger.Info("Completed zero-stock archival",
			zap.Int("archived", result.ArchivedCount),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

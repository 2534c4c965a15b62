package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MaxAvailabilityQuerySKUs caps the number of SKUs per availability query
const MaxAvailabilityQuerySKUs = 200

// AvailabilityCache caches the display projection of SKU counters.
// It is never consulted by reserve.
type AvailabilityCache interface {
	// GetMany returns the cached entries found for ids
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]inventory.StockAvailability, error)
	// SetMany stores entries for ttl
	SetMany(ctx context.Context, entries []inventory.StockAvailability, ttl time.Duration) error
	// Invalidate drops the entries of ids
	Invalidate(ctx context.Context, ids ...uuid.UUID) error
}

// AvailabilityService answers read-only stock queries for the storefront
type AvailabilityService struct {
	skuRepo  inventory.SKURepository
	cache    AvailabilityCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService. A nil cache or a
// non-positive ttl disables caching.
func NewAvailabilityService(skuRepo inventory.SKURepository, cache AvailabilityCache, cacheTTL time.Duration, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cache = nil
	}
	return &AvailabilityService{
		skuRepo:  skuRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetAvailableStock returns the counters of the requested SKUs in request
// order. Unknown SKUs are omitted; repeated ids are answered once.
func (s *AvailabilityService) GetAvailableStock(ctx context.Context, skuIDs []uuid.UUID) ([]inventory.StockAvailability, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "availability", "get")
	defer span.End()

	ids := dedupeIDs(skuIDs)
	if len(ids) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one SKU ID is required")
	}
	if len(ids) > MaxAvailabilityQuerySKUs {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("At most %d SKU IDs may be queried at once", MaxAvailabilityQuerySKUs))
	}

	found := make(map[uuid.UUID]inventory.StockAvailability, len(ids))
	missing := ids
	if s.cache != nil {
		cached, err := s.cache.GetMany(ctx, ids)
		if err != nil {
			s.logger.Warn("Availability cache read failed", zap.Error(err))
		}
		for id, entry := range cached {
			found[id] = entry
		}
		missing = nil
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
	}

	if len(missing) > 0 {
		skus, err := s.skuRepo.FindByIDs(ctx, missing)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		loaded := make([]inventory.StockAvailability, len(skus))
		for i := range skus {
			loaded[i] = skus[i].Availability()
			found[skus[i].ID] = loaded[i]
		}
		if s.cache != nil && len(loaded) > 0 {
			if err := s.cache.SetMany(ctx, loaded, s.cacheTTL); err != nil {
				s.logger.Warn("Availability cache write failed", zap.Error(err))
			}
		}
	}

	out := make([]inventory.StockAvailability, 0, len(found))
	for _, id := range ids {
		if entry, ok := found[id]; ok {
			out = append(out, entry)
		}
	}
	telemetry.SetAttribute(span, "skus", len(out))
	return out, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryAvailabilityCache keeps availability projections in process memory.
// It suits single-instance deployments; entries are never shared across replicas.
type InMemoryAvailabilityCache struct {
	entries sync.Map // uuid.UUID -> *cacheEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	value     inventory.StockAvailability
	expiresAt time.Time
}

func (e *cacheEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// NewInMemoryAvailabilityCache creates the cache and starts its cleanup loop.
// Call Close to stop the loop.
func NewInMemoryAvailabilityCache(logger *zap.Logger) *InMemoryAvailabilityCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &InMemoryAvailabilityCache{
		logger: logger,
		stopCh: make(chan struct{}),
	}
	go c.cleanupExpired(defaultCleanupInterval)
	return c
}

// GetMany returns the live entries for ids
func (c *InMemoryAvailabilityCache) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]inventory.StockAvailability, error) {
	now := time.Now()
	out := make(map[uuid.UUID]inventory.StockAvailability, len(ids))
	for _, id := range ids {
		value, ok := c.entries.Load(id)
		if !ok {
			c.misses.Add(1)
			continue
		}
		entry := value.(*cacheEntry)
		if entry.isExpired(now) {
			c.entries.CompareAndDelete(id, value)
			c.misses.Add(1)
			continue
		}
		c.hits.Add(1)
		out[id] = entry.value
	}
	return out, nil
}

// SetMany stores entries for ttl
func (c *InMemoryAvailabilityCache) SetMany(ctx context.Context, entries []inventory.StockAvailability, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	expiresAt := time.Now().Add(ttl)
	for _, e := range entries {
		c.entries.Store(e.SKUID, &cacheEntry{value: e, expiresAt: expiresAt})
	}
	return nil
}

// Invalidate drops the entries of ids
func (c *InMemoryAvailabilityCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	for _, id := range ids {
		c.entries.Delete(id)
	}
	return nil
}

// Stats returns hit and miss counters since creation
func (c *InMemoryAvailabilityCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close stops the cleanup loop. It is safe to call more than once.
func (c *InMemoryAvailabilityCache) Close() error {
	if c.stopped.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

func (c *InMemoryAvailabilityCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup(time.Now())
		}
	}
}

func (c *InMemoryAvailabilityCache) doCleanup(now time.Time) int {
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired(now) {
			c.entries.CompareAndDelete(key, value)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Cleaned up expired availability entries", zap.Int("removed", removed))
	}
	return removed
}

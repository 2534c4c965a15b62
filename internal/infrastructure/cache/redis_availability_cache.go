package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/inventory"
)

const defaultKeyPrefix = "inventory:availability:"

// RedisAvailabilityCache shares availability projections across replicas.
// Values are JSON encoded StockAvailability documents with a per-key TTL.
type RedisAvailabilityCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisAvailabilityCache creates a cache over an existing client
func NewRedisAvailabilityCache(client redis.UniversalClient, keyPrefix string) *RedisAvailabilityCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisAvailabilityCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (c *RedisAvailabilityCache) key(id uuid.UUID) string {
	return c.keyPrefix + id.String()
}

// GetMany loads all ids with a single MGET. Undecodable values count as misses.
func (c *RedisAvailabilityCache) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]inventory.StockAvailability, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]inventory.StockAvailability{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read availability cache: %w", err)
	}

	out := make(map[uuid.UUID]inventory.StockAvailability, len(ids))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var entry inventory.StockAvailability
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.SKUID != ids[i] {
			continue
		}
		out[ids[i]] = entry
	}
	return out, nil
}

// SetMany writes entries in one pipeline
func (c *RedisAvailabilityCache) SetMany(ctx context.Context, entries []inventory.StockAvailability, ttl time.Duration) error {
	if len(entries) == 0 || ttl <= 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			pipe.Set(ctx, c.key(e.SKUID), data, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write availability cache: %w", err)
	}
	return nil
}

// Invalidate deletes the entries of ids
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability cache: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (c *RedisAvailabilityCache) Close() error {
	return c.client.Close()
}

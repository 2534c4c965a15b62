package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	appinv "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Supported cache backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// AvailabilityCache is an application cache that owns resources
type AvailabilityCache interface {
	appinv.AvailabilityCache
	io.Closer
}

// Factory creates availability caches based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithPingTimeout bounds the Redis connectivity check
func WithPingTimeout(d time.Duration) FactoryOption {
	return func(f *Factory) {
		f.pingTimeout = d
	}
}

// NewFactory creates a new cache factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache connects to Redis and returns a cache over it
func (f *Factory) CreateRedisCache(ctx context.Context) (*RedisAvailabilityCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        f.redisConfig.Addr(),
		Password:    f.redisConfig.Password,
		DB:          f.redisConfig.DB,
		DialTimeout: f.pingTimeout,
		MaxRetries:  -1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", f.redisConfig.Addr(), err)
	}
	return NewRedisAvailabilityCache(client, ""), nil
}

// Create returns the cache for backend. A redis backend that cannot be
// reached falls back to memory when allowed.
func (f *Factory) Create(ctx context.Context, backend string) (AvailabilityCache, error) {
	switch backend {
	case BackendMemory, "":
		f.logger.Info("Using in-memory availability cache")
		return NewInMemoryAvailabilityCache(f.logger), nil
	case BackendRedis:
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", backend)
	}

	redisCache, err := f.CreateRedisCache(ctx)
	if err == nil {
		f.logger.Info("Using Redis availability cache", zap.String("addr", f.redisConfig.Addr()))
		return redisCache, nil
	}
	if !f.allowInMemoryFallback {
		return nil, err
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory availability cache", zap.Error(err))
	return NewInMemoryAvailabilityCache(f.logger), nil
}

var (
	_ AvailabilityCache = (*InMemoryAvailabilityCache)(nil)
	_ AvailabilityCache = (*RedisAvailabilityCache)(nil)
)

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/example/inventory-service/config"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// Module owns the Redis client behind the list cache.
type Module struct {
	cache  *Cache
	client *redis.Client
	cfg    config.CacheConfig
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the cache module. The client connects lazily, so the
// cache can be handed to other modules before Start.
func NewModule(cfg config.CacheConfig, logger types.Logger) *Module {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &Module{
		cache:  New(client, cfg.Prefix, cfg.TTL),
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// Start verifies Redis is reachable.
func (m *Module) Start(ctx context.Context) error {
	if err := m.cache.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	m.logger.Info("Connected to Redis", "addr", m.cfg.RedisAddr, "prefix", m.cfg.Prefix, "ttl", m.cfg.TTL)
	return nil
}

// Stop closes the Redis client.
func (m *Module) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	m.logger.Info("Cache module stopped", "stats", m.cache.Stats())
	return nil
}

// Health pings Redis and reports the cache counters.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.cache.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}

	s := m.cache.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr":     m.cfg.RedisAddr,
			"hits":     s.Hits,
			"misses":   s.Misses,
			"hit_rate": s.HitRate,
		},
	}
}

// Cache returns the list cache.
func (m *Module) Cache() *Cache {
	return m.cache
}

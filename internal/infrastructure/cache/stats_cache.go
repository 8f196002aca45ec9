package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tims/backend/internal/domain/inventory"
	"github.com/tims/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	statsKey      = "tims:inventory:stats"
	generationKey = "tims:inventory:stats:gen"
)

// RedisStatsCache stores the inventory overview in Redis so every instance
// shares one cached copy and one invalidation.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStatsCache wraps an existing client
func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

// Get returns the cached stats; ok is false on a miss
func (c *RedisStatsCache) Get(ctx context.Context) (*inventory.Stats, bool, error) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read stats cache: %w", err)
	}

	var stats inventory.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		// A corrupt entry is treated as a miss and overwritten on next Set
		return nil, false, nil
	}
	return &stats, true, nil
}

// Generation returns the invalidation counter; read it before computing stats
func (c *RedisStatsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stats generation: %w", err)
	}
	return gen, nil
}

// Set stores stats computed at generation. The write is skipped when an
// invalidation has happened since; WATCH makes the check and write atomic.
func (c *RedisStatsCache) Set(ctx context.Context, generation int64, stats *inventory.Stats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, statsKey, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write stats cache: %w", err)
	}
	return nil
}

func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, statsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *RedisStatsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Backend names the cache implementation
func (c *RedisStatsCache) Backend() string {
	return "redis"
}

// InMemoryStatsCache is the single-instance fallback
type InMemoryStatsCache struct {
	mu         sync.RWMutex
	generation int64
	stats      *inventory.Stats
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewInMemoryStatsCache creates an in-process cache with the given TTL
func NewInMemoryStatsCache(ttl time.Duration) *InMemoryStatsCache {
	return &InMemoryStatsCache{ttl: ttl, now: time.Now}
}

func (c *InMemoryStatsCache) Get(ctx context.Context) (*inventory.Stats, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stats == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	copied := *c.stats
	copied.ByCategory = append([]inventory.CategoryCount(nil), c.stats.ByCategory...)
	return &copied, true, nil
}

func (c *InMemoryStatsCache) Generation(ctx context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation, nil
}

func (c *InMemoryStatsCache) Set(ctx context.Context, generation int64, stats *inventory.Stats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return nil
	}
	copied := *stats
	copied.ByCategory = append([]inventory.CategoryCount(nil), stats.ByCategory...)
	c.stats = &copied
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

func (c *InMemoryStatsCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.stats = nil
	return nil
}

func (c *InMemoryStatsCache) Ping(ctx context.Context) error {
	return nil
}

func (c *InMemoryStatsCache) Backend() string {
	return "memory"
}

// StatsCache is the contract both implementations satisfy
type StatsCache interface {
	Get(ctx context.Context) (*inventory.Stats, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, generation int64, stats *inventory.Stats) error
	Invalidate(ctx context.Context) error
	Ping(ctx context.Context) error
	Backend() string
}

// NewStatsCache returns a Redis-backed cache when Redis is enabled and
// reachable, falling back to the in-memory cache otherwise. The returned
// close function releases the Redis client, if any.
func NewStatsCache(cfg config.RedisConfig, logger *zap.Logger) (StatsCache, func() error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory stats cache")
		return NewInMemoryStatsCache(cfg.StatsTTL), noop
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory stats cache",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryStatsCache(cfg.StatsTTL), noop
	}

	logger.Info("Using Redis stats cache", zap.String("addr", cfg.Addr()))
	return NewRedisStatsCache(client, cfg.StatsTTL), client.Close
}

var (
	_ StatsCache = (*RedisStatsCache)(nil)
	_ StatsCache = (*InMemoryStatsCache)(nil)
)

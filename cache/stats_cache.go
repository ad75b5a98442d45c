package cache

import (
	"context"
	"fmt"
	"time"
)

// StatsCache is a short-TTL cache for per-user dashboard stats. A StatsCache
// over a nil RedisClient reports misses and swallows writes, so callers can
// wire it unconditionally.
type StatsCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewStatsCache creates a new stats cache
func NewStatsCache(redis *RedisClient, ttl time.Duration) *StatsCache {
	return &StatsCache{redis: redis, ttl: ttl}
}

func statsKey(userID int64) string {
	return fmt.Sprintf("stats:user:%d", userID)
}

// GetStats loads a cached snapshot into dest. The bool reports a hit.
func (c *StatsCache) GetStats(userID int64, dest interface{}) (bool, error) {
	if c.redis == nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.redis.Get(ctx, statsKey(userID), dest)
	if err != nil {
		if IsMiss(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetStats stores a snapshot with the cache TTL
func (c *StatsCache) SetStats(userID int64, value interface{}) error {
	if c.redis == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return c.redis.Set(ctx, statsKey(userID), value, c.ttl)
}

// Invalidate drops a user's snapshot after a journal write
func (c *StatsCache) Invalidate(userID int64) error {
	if c.redis == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return c.redis.Delete(ctx, statsKey(userID))
}

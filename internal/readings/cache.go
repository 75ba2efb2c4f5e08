package readings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Fetcher with a Redis read-through cache.
type Cache struct {
	next  Fetcher
	redis *redis.Client
	ttl   time.Duration
}

// NewCache caches readings from next for ttl. A nil client or a zero ttl
// passes every call through.
func NewCache(next Fetcher, client *redis.Client, ttl time.Duration) *Cache {
	if next == nil {
		panic("readings.NewCache: next fetcher is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{next: next, redis: client, ttl: ttl}
}

func (c *Cache) Fetch(ctx context.Context, deviceID string) (map[string]any, error) {
	if data, ok := c.load(ctx, deviceID); ok {
		return data, nil
	}
	data, err := c.next.Fetch(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, deviceID, data)
	return data, nil
}

// Evict drops the cached reading of a device.
func (c *Cache) Evict(ctx context.Context, deviceID string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, cacheKey(deviceID)).Err()
}

func (c *Cache) load(ctx context.Context, deviceID string) (map[string]any, bool) {
	if c.redis == nil || c.ttl == 0 {
		return nil, false
	}
	raw, err := c.redis.Get(ctx, cacheKey(deviceID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, cacheKey(deviceID)).Err()
		}
		return nil, false
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		_ = c.redis.Del(ctx, cacheKey(deviceID)).Err()
		return nil, false
	}
	return data, true
}

func (c *Cache) store(ctx context.Context, deviceID string, data map[string]any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cacheKey(deviceID), raw, c.ttl).Err()
}

func cacheKey(deviceID string) string {
	return "readings:" + deviceID
}

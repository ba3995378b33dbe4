package availability

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	domainavailability "pucisca/internal/domain/availability"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

const defaultCachePrefix = "pucisca:availability:"

// RedisClient is the subset of go-redis the cache needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedSource keeps upstream answers in redis for TTL so that several
// instances share one upstream fetch. Redis failures fall through to the
// upstream source; they never fail a read on their own.
type CachedSource struct {
	Next   domainavailability.Source
	Client RedisClient
	TTL    time.Duration
	Prefix string
	Logger *slog.Logger
}

func NewCachedSource(next domainavailability.Source, client RedisClient, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{Next: next, Client: client, TTL: ttl, Prefix: defaultCachePrefix, Logger: logger}
}

// NewRedisClient opens a go-redis client for addr.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func (c *CachedSource) Blocked(ctx context.Context, key property.Key) ([]daterange.Date, error) {
	if c.Next == nil {
		return nil, errors.New("availability: cached source without upstream")
	}
	if c.Client == nil || c.TTL <= 0 {
		return c.Next.Blocked(ctx, key)
	}

	if dates, ok := c.lookup(ctx, key); ok {
		return dates, nil
	}

	dates, err := c.Next.Blocked(ctx, key)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, dates)
	return dates, nil
}

// Invalidate drops the cached entry so the next read goes upstream.
func (c *CachedSource) Invalidate(ctx context.Context, key property.Key) error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx, c.cacheKey(key)).Err()
}

func (c *CachedSource) lookup(ctx context.Context, key property.Key) ([]daterange.Date, bool) {
	raw, err := c.Client.Get(ctx, c.cacheKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn("availability cache read failed", key, err)
		}
		return nil, false
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		c.warn("availability cache entry unreadable", key, err)
		return nil, false
	}
	dates, err := parseDates(values)
	if err != nil {
		c.warn("availability cache entry unreadable", key, err)
		return nil, false
	}
	return dates, true
}

func (c *CachedSource) store(ctx context.Context, key property.Key, dates []daterange.Date) {
	values := make([]string, len(dates))
	for i, d := range dates {
		values[i] = d.String()
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, c.cacheKey(key), payload, c.TTL).Err(); err != nil {
		c.warn("availability cache write failed", key, err)
	}
}

func (c *CachedSource) cacheKey(key property.Key) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = defaultCachePrefix
	}
	return prefix + string(key)
}

func (c *CachedSource) warn(msg string, key property.Key, err error) {
	if c.Logger != nil {
		c.Logger.Warn(msg, "property", key, "error", err)
	}
}

var _ domainavailability.Source = (*CachedSource)(nil)

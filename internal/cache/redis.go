package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "resumerise:learned:"
	defaultTTL = 24 * time.Hour
)

// ScoreCache stores learned scores in Redis.
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis instance described by url
// (for example redis://localhost:6379/0) and verifies the connection.
func New(ctx context.Context, url string, ttl time.Duration) (*ScoreCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 500 * time.Millisecond
	opts.WriteTimeout = 500 * time.Millisecond

	c := NewWithClient(redis.NewClient(opts), ttl)
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *ScoreCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ScoreCache{client: client, ttl: ttl}
}

// Ping checks the Redis connection.
func (c *ScoreCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Get returns the cached score for key. A missing key is not an error.
func (c *ScoreCache) Get(ctx context.Context, key string) (float64, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get: %w", err)
	}

	score, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("decoding cached score %q: %w", val, err)
	}
	return score, true, nil
}

// Set stores the score under key with the configured TTL.
func (c *ScoreCache) Set(ctx context.Context, key string, value float64) error {
	if err := c.client.Set(ctx, keyPrefix+key, strconv.FormatFloat(value, 'f', -1, 64), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *ScoreCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

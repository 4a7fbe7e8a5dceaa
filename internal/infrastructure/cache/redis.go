package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"NewswireScanner/internal/ports"
)

const seenHeadlinesKey = "newswire:headlines:seen"

// HeadlineCache tracks already-processed headlines in a Redis set so dedup
// survives process restarts.
type HeadlineCache struct {
	client *redis.Client
}

var _ ports.HeadlineCache = (*HeadlineCache)(nil)

// NewHeadlineCache parses a redis URL and builds the backing client.
func NewHeadlineCache(redisURL string) (*HeadlineCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &HeadlineCache{client: redis.NewClient(opt)}, nil
}

// Ping verifies the connection on startup.
func (c *HeadlineCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Seen reports whether the headline was processed before.
func (c *HeadlineCache) Seen(ctx context.Context, headline string) (bool, error) {
	return c.client.SIsMember(ctx, seenHeadlinesKey, headline).Result()
}

// MarkSeen records the headline as processed.
func (c *HeadlineCache) MarkSeen(ctx context.Context, headline string) error {
	return c.client.SAdd(ctx, seenHeadlinesKey, headline).Err()
}

// Close releases the underlying client.
func (c *HeadlineCache) Close() error {
	return c.client.Close()
}

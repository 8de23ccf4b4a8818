// Package cache keeps computed scope summaries in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "portal:scope-summary:"

// SummaryCache stores JSON values per scope key with a fixed TTL. A cache
// without a client, or with a non-positive TTL, never hits.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache wraps client.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// Enabled reports whether reads and writes reach Redis.
func (c *SummaryCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get decodes the cached value of scopeKey into dst and reports a hit.
func (c *SummaryCache) Get(ctx context.Context, scopeKey string, dst any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, Key(scopeKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read summary %s: %w", scopeKey, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode summary %s: %w", scopeKey, err)
	}
	return true, nil
}

// Set stores value under scopeKey.
func (c *SummaryCache) Set(ctx context.Context, scopeKey string, value any) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode summary %s: %w", scopeKey, err)
	}
	return c.client.Set(ctx, Key(scopeKey), raw, c.ttl).Err()
}

// Key returns the Redis key of a scope summary.
func Key(scopeKey string) string {
	return keyPrefix + scopeKey
}

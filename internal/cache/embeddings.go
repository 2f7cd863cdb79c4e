// Package cache holds the redis-backed embedding cache owned by the
// Similarity Index. Entries are rebuildable from the oracle at any time; the
// cache is never the source of truth and may be flushed without data loss.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = time.Hour

type EmbeddingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEmbeddingCache(client *redis.Client, ttl time.Duration) *EmbeddingCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &EmbeddingCache{client: client, ttl: ttl}
}

func buildKey(contentID int64) string {
	return fmt.Sprintf("emb:content:%d", contentID)
}

// Get returns the cached embedding, or (nil, nil) on a miss.
func (c *EmbeddingCache) Get(ctx context.Context, contentID int64) ([]float64, error) {
	val, err := c.client.Get(ctx, buildKey(contentID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding from cache: %w", err)
	}

	var vec []float64
	if err := json.Unmarshal([]byte(val), &vec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding for content %d: %w", contentID, err)
	}
	return vec, nil
}

func (c *EmbeddingCache) Set(ctx context.Context, contentID int64, vec []float64) error {
	val, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	if err := c.client.Set(ctx, buildKey(contentID), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set embedding in cache: %w", err)
	}
	return nil
}

// Ping connectivity
func (c *EmbeddingCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TitleCache stores resolved page titles keyed by URL digest.
type TitleCache struct {
	client *redis.Client
}

// NewTitleCache creates a title cache on top of an existing client.
func NewTitleCache(client *redis.Client) *TitleCache {
	return &TitleCache{client: client}
}

// Get returns the cached title for rawURL, or "" on a cache miss.
func (c *TitleCache) Get(ctx context.Context, rawURL string) (string, error) {
	title, err := c.client.Get(ctx, TitleKey(digest(rawURL))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // Cache miss
		}
		return "", fmt.Errorf("failed to get cached title: %w", err)
	}
	return title, nil
}

// Set caches a title for ttl.
func (c *TitleCache) Set(ctx context.Context, rawURL, title string, ttl time.Duration) error {
	if err := c.client.Set(ctx, TitleKey(digest(rawURL)), title, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache title: %w", err)
	}
	return nil
}

// Flush removes every cached title.
func (c *TitleCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefixTitle+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete title key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush titles: %w", err)
	}
	return nil
}

func digest(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

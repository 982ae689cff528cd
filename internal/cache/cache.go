// Package cache keeps read-mostly catalog queries in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// DefaultPrefix namespaces all keys written by the catalog cache
const DefaultPrefix = "vocab:catalog:"

// Catalog is the read side of the word store that the cache fronts
type Catalog interface {
	ListWords(ctx context.Context, filter models.WordFilter) ([]*models.Word, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// CatalogCache serves catalog reads from Redis and falls back to the source.
// A nil client turns it into a passthrough. Redis failures are logged and
// never fail a read.
type CatalogCache struct {
	source Catalog
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, address, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewCatalogCache creates a cache in front of source
func NewCatalogCache(source Catalog, client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		source: source,
		client: client,
		ttl:    ttl,
		prefix: DefaultPrefix,
	}
}

// Enabled reports whether a Redis client is attached
func (c *CatalogCache) Enabled() bool {
	return c.client != nil
}

// ListWords returns the words matching filter
func (c *CatalogCache) ListWords(ctx context.Context, filter models.WordFilter) ([]*models.Word, error) {
	key := c.wordsKey(filter)

	var words []*models.Word
	if c.get(ctx, key, &words) {
		return words, nil
	}

	words, err := c.source.ListWords(ctx, filter)
	if err != nil {
		return nil, err
	}

	c.set(ctx, key, words)
	return words, nil
}

// ListCategories returns the distinct categories
func (c *CatalogCache) ListCategories(ctx context.Context) ([]string, error) {
	key := c.prefix + "categories"

	var categories []string
	if c.get(ctx, key, &categories) {
		return categories, nil
	}

	categories, err := c.source.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	c.set(ctx, key, categories)
	return categories, nil
}

// Invalidate removes every cached catalog entry
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	pattern := fmt.Sprintf("%s*", c.prefix)
	var cursor uint64
	var keysDeleted int

	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("failed to delete some cache keys", "error", err)
			}
			keysDeleted += len(keys)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	slog.Debug("catalog cache invalidated", "keys_deleted", keysDeleted)
	return nil
}

// Warm refreshes the category list, the full catalog and each
// per-category list, limited to limit words per query.
func (c *CatalogCache) Warm(ctx context.Context, limit int) error {
	if c.client == nil {
		return nil
	}

	categories, err := c.source.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	c.set(ctx, c.prefix+"categories", categories)

	filters := []models.WordFilter{{Limit: limit}}
	for _, category := range categories {
		filters = append(filters, models.WordFilter{Category: category, Limit: limit})
	}

	for _, filter := range filters {
		words, err := c.source.ListWords(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load words for %q: %w", filter.Category, err)
		}
		c.set(ctx, c.wordsKey(filter), words)
	}

	slog.Debug("catalog cache warmed", "entries", len(filters)+1)
	return nil
}

// Ping verifies Redis connectivity
func (c *CatalogCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *CatalogCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *CatalogCache) wordsKey(filter models.WordFilter) string {
	return fmt.Sprintf("%swords:%s:%d:%d", c.prefix, filter.Category, filter.Difficulty, filter.Limit)
}

func (c *CatalogCache) get(ctx context.Context, key string, dst any) bool {
	if c.client == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}

	return true
}

func (c *CatalogCache) set(ctx context.Context, key string, value any) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

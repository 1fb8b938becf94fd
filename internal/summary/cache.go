package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/maajod/maajod-backend/pkg/logger"
	"github.com/maajod/maajod-backend/pkg/redis"
)

type cacheStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SummaryKey(storeID string, year, month int) string
}

// Cache is a read-through store for monthly summaries. Redis failures
// degrade to cache misses; they never fail the request that hit them.
type Cache struct {
	store cacheStore
	ttl   time.Duration
	logg  *logger.Logger
}

// NewCache builds a summary cache with the provided backing store and TTL.
func NewCache(store cacheStore, ttl time.Duration, logg *logger.Logger) (*Cache, error) {
	if store == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Cache{store: store, ttl: ttl, logg: logg}, nil
}

// Get returns the cached summary for (store, year, month) when present.
func (c *Cache) Get(ctx context.Context, storeID uuid.UUID, year int, month time.Month) (*Summary, bool) {
	key := c.store.SummaryKey(storeID.String(), year, int(month))
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn(ctx, key, "summary cache read failed", err)
		}
		return nil, false
	}

	var cached Summary
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		c.warn(ctx, key, "summary cache entry corrupt", err)
		return nil, false
	}
	return &cached, true
}

// Put stores a summary under its (store, year, month) key for the cache TTL.
func (c *Cache) Put(ctx context.Context, storeID uuid.UUID, year int, month time.Month, value *Summary) {
	if value == nil {
		return
	}
	key := c.store.SummaryKey(storeID.String(), year, int(month))
	payload, err := json.Marshal(value)
	if err != nil {
		c.warn(ctx, key, "summary cache encode failed", err)
		return
	}
	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		c.warn(ctx, key, "summary cache write failed", err)
	}
}

// Invalidate drops the cached summary covering the given month. Ledger
// writes call this before the cache may be trusted again.
func (c *Cache) Invalidate(ctx context.Context, storeID uuid.UUID, year int, month time.Month) {
	key := c.store.SummaryKey(storeID.String(), year, int(month))
	if err := c.store.Del(ctx, key); err != nil {
		c.warn(ctx, key, "summary cache invalidation failed", err)
	}
}

func (c *Cache) warn(ctx context.Context, key, msg string, err error) {
	c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
		"key":   key,
		"error": err.Error(),
	}), msg)
}

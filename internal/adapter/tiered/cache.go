// Package tiered implements a two-level (L1 + L2) cache adapter.
package tiered

import (
	"context"
	"log/slog"
	"time"

	"github.com/ERPlora/module-training/internal/port/cache"
)

// Cache combines an L1 (in-process) and L2 (shared) cache.
// Get checks L1 first, then L2, backfilling L1 on an L2 hit.
// An unreachable L2 degrades reads to L1 only.
type Cache struct {
	l1       cache.Cache
	l2       cache.Cache
	l1Expire time.Duration
}

// New creates a tiered cache with the given L1 and L2 backends.
// l1Expire controls how long L2 backfill entries live in L1.
func New(l1, l2 cache.Cache, l1Expire time.Duration) *Cache {
	return &Cache{l1: l1, l2: l2, l1Expire: l1Expire}
}

// Get checks L1, then L2.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, found, err := c.l1.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if found {
		return val, true, nil
	}

	val, found, err = c.l2.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "l2 cache get failed", "key", key, "error", err)
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}
	if err := c.l1.Set(ctx, key, val, c.l1Expire); err != nil {
		slog.WarnContext(ctx, "l1 cache backfill failed", "key", key, "error", err)
	}
	return val, true, nil
}

// Set writes to both levels. An L2 failure is logged, not returned.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if err := c.l2.Set(ctx, key, value, ttl); err != nil {
		slog.WarnContext(ctx, "l2 cache set failed", "key", key, "error", err)
	}
	return nil
}

// Delete removes from both levels. L1 is always cleared; the L2 error,
// if any, is returned so stale shared entries are reported.
func (c *Cache) Delete(ctx context.Context, key string) error {
	l1Err := c.l1.Delete(ctx, key)
	if err := c.l2.Delete(ctx, key); err != nil {
		return err
	}
	return l1Err
}

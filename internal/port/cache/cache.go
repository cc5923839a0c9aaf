// Package cache defines the port interface for caching.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// Cache is the port interface for key-value caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key builds a tenant-prefixed key so entries of different tenants never
// collide.
func Key(tid tenant.ID, parts ...string) string {
	return tid.String() + ":" + strings.Join(parts, ":")
}

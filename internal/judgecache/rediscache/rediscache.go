// Package rediscache implements an optional, fleet-wide JudgeCache
// backend over a Redis-compatible store, so multiple workflow
// instances share cached judge verdicts instead of each keeping a local
// filesystem cache.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnagri/claimfusion/internal/capability"
	"github.com/vnagri/claimfusion/internal/global"
)

// DefaultTTL bounds how long a cached verdict survives before it must be
// recomputed, so a later correction to the judge's prompt or model
// eventually takes effect without a manual cache flush.
const DefaultTTL = 30 * 24 * time.Hour

// Cache wraps a go-redis client as a capability.JudgeCache, hashing keys
// under a fixed namespace so it can share a Redis instance with other
// consumers without key collisions.
type Cache struct {
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
}

var _ capability.JudgeCache = (*Cache)(nil)

// New dials a Redis-compatible store per cfg. The connection is not
// verified until the first call; callers that want a fail-fast startup
// should call Ping.
func New(cfg global.ValkeyConfig, namespace string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{rdb: rdb, namespace: namespace, ttl: ttl}
}

// Ping verifies connectivity to the backing store.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Get returns the cached bytes for key. A cache miss is not an error:
// ok is false and err is nil.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores value for key with the cache's configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	return c.rdb.Set(ctx, c.fullKey(key), value, c.ttl).Err()
}

func (c *Cache) fullKey(key string) string {
	return c.namespace + ":" + key
}

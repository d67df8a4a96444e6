package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/skillscout/skillscout/cache/inmemory"
	redis_cache "github.com/skillscout/skillscout/cache/redis"
)

// Cache is an identity+query keyed response cache. Entries expire after the
// TTL passed at construction; there is no other eviction policy. Keys are
// built with Key so backends stay interchangeable.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, response string) error
}

type CacheType string

const (
	InMemoryCache CacheType = "inmemory"
	RedisCache    CacheType = "redis"
)

// New builds a response cache for the configured backend.
func New(cacheType CacheType, ttl time.Duration, redisAddr, redisPass string, redisDB int) (Cache, error) {
	switch cacheType {
	case InMemoryCache:
		return inmemory.New(ttl), nil
	case RedisCache:
		return redis_cache.New(redisAddr, redisPass, redisDB, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}
}

// Key builds the cache key for one caller's query.
func Key(uid, query string) string {
	return fmt.Sprintf("response:%s:%s", uid, query)
}

package inmemory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	response  string
	expiresAt time.Time
}

// Cache is a mutex-guarded in-memory response cache with TTL eviction.
// Expired entries are dropped on read and rewritten on Set.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *Cache {
	return &Cache{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false, nil
	}
	return e.response, true, nil
}

func (c *Cache) Set(_ context.Context, key, response string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{response: response, expiresAt: c.now().Add(c.ttl)}
	return nil
}

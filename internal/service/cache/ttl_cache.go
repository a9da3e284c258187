package cache

import (
	"sync"
	"time"
)

// TTLCache is the in-process fallback used when Redis is not configured.
// The forecast handler stores serialized response envelopes here keyed by
// symbol and horizon; entries are dropped lazily on read once expired.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]ttlEntry
}

type ttlEntry struct {
	val       any
	expiresAt time.Time // zero means no expiry
}

func NewTTLCache() *TTLCache {
	return &TTLCache{entries: make(map[string]ttlEntry)}
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	switch {
	case !ok:
		return nil, false
	case !e.expiresAt.IsZero() && time.Now().After(e.expiresAt):
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.val, true
}

// Set stores a value; ttl <= 0 keeps the entry until overwritten.
func (c *TTLCache) Set(key string, v any, ttl time.Duration) {
	e := ttlEntry{val: v}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// GetBytes and SetBytes satisfy BytesCache so the handler can swap this
// cache for the Redis one without caring which is behind it.
func (c *TTLCache) GetBytes(key string) ([]byte, bool, error) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	c.Set(key, value, ttl)
	return nil
}

package prefetch

import "sync"

// Cache is the request-local store pre-fetched results land in. One
// instance per request — never shared across requests, unlike
// providercache.Cache which is a process-wide provider-level cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewCache returns an empty request-local cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// Put stores a value under (tuple, sub-key). The tuple part is
// lower-cased; the sub-key is used exactly as given.
func (c *Cache) Put(t Tuple, subKey string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[t.key()+"|"+subKey] = value
}

// Get reads a value stored by Put. The scoring loop reads cache first,
// falling back to a direct provider call only on a miss.
func (c *Cache) Get(t Tuple, subKey string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[t.key()+"|"+subKey]
	return v, ok
}

package review

import "sync"

// Cache stores review results keyed by Key. Entries live for the session:
// no eviction, no TTL; a key is only ever overwritten by a new review
// request targeting it, and Reset clears everything on sign-out.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get retrieves a cached review. Returns ("", false) on miss.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[key]
	return text, ok
}

// Set stores a review result, replacing any prior value for the key.
func (c *Cache) Set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = text
}

// Len reports the number of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every entry. Called when the session ends.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
}

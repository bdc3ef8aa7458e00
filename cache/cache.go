// Package cache provides the in-process, time-expiring lookup cache for movie metadata.
// Entries expire after a configurable TTL and are evicted lazily on the next access
// of the same key; there is no background sweep and no capacity bound.
package cache

import (
	"sync"
	"time"

	"github.com/onnwee/moviebot/omdb"
)

type entry struct {
	fetchedAt time.Time
	record    omdb.Record
}

// Cache maps a literal query string to the last fetched metadata record.
// Keys are case-sensitive; callers trim whitespace before lookup.
// Safe for concurrent use.
type Cache struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]entry

	// now is swappable for tests.
	now func() time.Time
}

// New returns a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, m: make(map[string]entry), now: time.Now}
}

// Has reports whether a fresh entry exists for query. An expired entry is
// deleted as part of this check.
func (c *Cache) Has(query string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasLocked(query)
}

func (c *Cache) hasLocked(query string) bool {
	e, ok := c.m[query]
	if !ok {
		return false
	}
	if c.now().Sub(e.fetchedAt) < c.ttl {
		return true
	}
	delete(c.m, query)
	return false
}

// Get returns the cached record for query if it is still fresh.
// An expired entry is never resurrected: it is evicted and absence reported.
func (c *Cache) Get(query string) (omdb.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasLocked(query) {
		return omdb.Record{}, false
	}
	return c.m[query].record, true
}

// Set inserts or overwrites the entry for query, stamping the current time.
func (c *Cache) Set(query string, rec omdb.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[query] = entry{fetchedAt: c.now(), record: rec}
}

// Remove evicts a single entry.
func (c *Cache) Remove(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, query)
}

// Clear evicts everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]entry)
}

// Len returns the number of stored entries, expired or not. Used by /status.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

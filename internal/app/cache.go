// FILE: internal/app/cache.go
package app

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wisatakota/internal/places"
)

// DefaultCacheTTL is how long a search result set stays addressable.
const DefaultCacheTTL = 30 * time.Minute

// CacheEntry is one stored search outcome. Entries are never modified
// after insertion; Results keeps provider order.
type CacheEntry struct {
	CreatedAt time.Time
	City      string
	Results   []places.Place

	seq uint64
}

// Cache is an in-memory TTL store of search results keyed by a random id.
// Expiry is lazy: Insert sweeps stale entries and Lookup refuses them.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*CacheEntry
	ttl   time.Duration
	seq   uint64
	now   func() time.Time
}

// NewCache creates a new Cache.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		items: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *Cache) expired(e *CacheEntry, now time.Time) bool {
	return now.Sub(e.CreatedAt) > c.ttl
}

// Sweep removes stale entries and reports how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.now())
}

func (c *Cache) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range c.items {
		if c.expired(e, now) {
			delete(c.items, k)
			removed++
		}
	}
	cacheEntries.Set(float64(len(c.items)))
	return removed
}

// Insert sweeps stale entries, stores results for city and returns the
// new entry's id.
func (c *Cache) Insert(city string, results []places.Place) string {
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepLocked(now)
	c.seq++
	c.items[id] = &CacheEntry{
		CreatedAt: now,
		City:      city,
		Results:   results,
		seq:       c.seq,
	}
	cacheEntries.Set(float64(len(c.items)))
	return id
}

// Lookup returns the entry for id. Absent and expired entries are misses.
func (c *Cache) Lookup(id string) (CacheEntry, bool) {
	if id == "" {
		return CacheEntry{}, false
	}
	c.mu.RLock()
	e, ok := c.items[id]
	c.mu.RUnlock()
	if !ok || c.expired(e, c.now()) {
		return CacheEntry{}, false
	}
	return *e, true
}

// FindByCity returns the id of the newest live entry whose city matches
// name case-insensitively.
func (c *Cache) FindByCity(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	var (
		bestID  string
		bestSeq uint64
	)
	for id, e := range c.items {
		if c.expired(e, now) || !strings.EqualFold(e.City, name) {
			continue
		}
		if e.seq > bestSeq {
			bestID, bestSeq = id, e.seq
		}
	}
	return bestID, bestID != ""
}

// Size returns current number of items.
func (c *Cache) Size() int {
	c.mu.RLock()
	sz := len(c.items)
	c.mu.RUnlock()
	return sz
}

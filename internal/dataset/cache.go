package dataset

import (
	"sync"
	"time"

	"github.com/oli3535/data-visualization-fianl/internal/models"
)

// Cache is a process-wide memoization table for loaded datasets, keyed by load
// parameters, with a time-based staleness bound. Entries are immutable once
// stored; concurrent readers within the validity window share the same slice.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	records  []models.RawIncident
	loadedAt time.Time
}

// NewCache creates a cache whose entries are valid for ttl after creation.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached records and their load time for key, if present and
// still within the validity window.
func (c *Cache) Get(key string) ([]models.RawIncident, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}

	if c.now().Sub(entry.loadedAt) >= c.ttl {
		return nil, time.Time{}, false
	}

	return entry.records, entry.loadedAt, true
}

// Put stores records under key and returns the recorded load time.
func (c *Cache) Put(key string, records []models.RawIncident) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	loadedAt := c.now()
	c.entries[key] = cacheEntry{records: records, loadedAt: loadedAt}
	return loadedAt
}

// Purge drops all entries.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

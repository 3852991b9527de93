package api

import (
	"os"
	"strconv"
	"sync"

	"github.com/lucasprac/dea-choquet/pkg/engine"
)

// ResultsCache is a thread-safe LRU cache of the latest results per cycle.
type ResultsCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*cacheEntry
	order   []string // oldest first
}

type cacheEntry struct {
	res *engine.CycleResults
}

// NewResultsCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 64.
func NewResultsCache(maxSize int) *ResultsCache {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &ResultsCache{
		maxSize: maxSize,
		entries: make(map[string]*cacheEntry),
	}
}

// NewResultsCacheFromEnv creates a cache with size from RESULTS_CACHE_SIZE env var.
func NewResultsCacheFromEnv() *ResultsCache {
	size := 64
	if v := os.Getenv("RESULTS_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewResultsCache(size)
}

// Get retrieves a cycle's results, or nil if not cached.
func (c *ResultsCache) Get(cycleID string) *engine.CycleResults {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cycleID]
	if !ok {
		return nil
	}

	c.moveToEnd(cycleID)
	return entry.res
}

// Put stores a cycle's results, evicting the least recently used entry if full.
func (c *ResultsCache) Put(cycleID string, res *engine.CycleResults) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[cycleID]; ok {
		c.entries[cycleID] = &cacheEntry{res: res}
		c.moveToEnd(cycleID)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[cycleID] = &cacheEntry{res: res}
	c.order = append(c.order, cycleID)
}

// Len returns the number of cached cycles.
func (c *ResultsCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultsCache) moveToEnd(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, id)
			return
		}
	}
}

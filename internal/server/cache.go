package server

import (
	"strings"
	"sync"
	"time"

	"github.com/mj1618/axsim/internal/model"
	"github.com/mj1618/axsim/internal/platform"
)

// cacheKey identifies a unique tree read scope.
type cacheKey struct {
	platform.Target
	Depth int
}

// cacheEntry holds a cached element tree with its timestamp.
type cacheEntry struct {
	elements  []model.Element
	timestamp time.Time
}

// TreeCache provides a TTL-based cache for element trees.
type TreeCache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewTreeCache creates a new cache. A ttl of 0 disables caching.
func NewTreeCache(ttl time.Duration) *TreeCache {
	return &TreeCache{
		entries: make(map[cacheKey]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// ReadElements returns cached elements if within TTL, otherwise reads fresh.
// The caller must hold the provider mutex.
func (c *TreeCache) ReadElements(reader platform.Reader, opts platform.ReadOptions) ([]model.Element, error) {
	if c.ttl == 0 {
		return reader.ReadElements(opts)
	}

	key := cacheKey{Target: opts.Target, Depth: opts.Depth}
	key.App = strings.ToLower(key.App)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.timestamp) < c.ttl {
		elements := entry.elements
		c.mu.Unlock()
		return elements, nil
	}
	c.mu.Unlock()

	elements, err := reader.ReadElements(opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{elements: elements, timestamp: c.now()}
	c.mu.Unlock()

	return elements, nil
}

// InvalidateApp removes all cache entries scoped to the given app, plus
// every entry not scoped by app name, since those may include it.
func (c *TreeCache) InvalidateApp(app string) {
	app = strings.ToLower(app)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.App == app || k.App == "" {
			delete(c.entries, k)
		}
	}
}

// InvalidateAll clears the entire cache.
func (c *TreeCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]cacheEntry)
}

// Len returns the number of cached scopes.
func (c *TreeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

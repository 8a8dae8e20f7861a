package surf

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default size for the point-lookup LRU cache.
const DefaultCacheSize = 1024

// CachedFilter wraps a Filter with an LRU cache over point lookups, which
// pays off when the same keys are probed repeatedly. It is safe for
// concurrent use.
type CachedFilter struct {
	filter *Filter
	cache  *lru.Cache[string, bool]
	mu     sync.RWMutex
}

// NewCachedFilter wraps a filter with the default cache size.
func NewCachedFilter(f *Filter) (*CachedFilter, error) {
	return NewCachedFilterWithSize(f, DefaultCacheSize)
}

// NewCachedFilterWithSize wraps a filter with a custom cache size.
func NewCachedFilterWithSize(f *Filter, cacheSize int) (*CachedFilter, error) {
	cache, err := lru.New[string, bool](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create LRU cache: %w", err)
	}

	return &CachedFilter{
		filter: f,
		cache:  cache,
	}, nil
}

// Lookup reports whether the key may be in the filter, consulting the
// cache first. The filter is immutable, so cached answers never go stale.
func (c *CachedFilter) Lookup(key Key) (bool, error) {
	k := string(key)

	c.mu.RLock()
	if found, ok := c.cache.Get(k); ok {
		c.mu.RUnlock()
		return found, nil
	}
	c.mu.RUnlock()

	found, err := c.filter.Lookup(key)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.cache.Add(k, found)
	c.mu.Unlock()

	return found, nil
}

// Filter returns the underlying filter, e.g. for range queries, which are
// not cached.
func (c *CachedFilter) Filter() *Filter {
	return c.filter
}

// ClearCache drops all cached lookups.
func (c *CachedFilter) ClearCache() {
	c.mu.Lock()
	c.cache.Purge()
	c.mu.Unlock()
}

// CacheLen returns the number of cached lookups.
func (c *CachedFilter) CacheLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.Len()
}

package rollout

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheSize bounds the number of memoized keys.
const DefaultCacheSize = 256

// CachedSource memoizes lookups of an underlying source for ttl.
type CachedSource struct {
	source Source
	cache  *expirable.LRU[string, int]
}

// NewCachedSource wraps source. A size below 1 uses DefaultCacheSize.
func NewCachedSource(source Source, size int, ttl time.Duration) *CachedSource {
	if size < 1 {
		size = DefaultCacheSize
	}
	return &CachedSource{
		source: source,
		cache:  expirable.NewLRU[string, int](size, nil, ttl),
	}
}

// RolloutPercentage implements Source.
func (c *CachedSource) RolloutPercentage(key string) int {
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v := clamp(c.source.RolloutPercentage(key))
	c.cache.Add(key, v)
	return v
}

// Purge drops every memoized value.
func (c *CachedSource) Purge() {
	c.cache.Purge()
}

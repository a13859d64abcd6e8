package driver

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the in-memory cache.
const DefaultCacheSize = 1024

// Cache holds lint results keyed by file content and configuration. The
// in-memory layer is consulted first; the disk layer is optional and
// survives between runs.
type Cache struct {
	mem    *lru.Cache[Digest, *CachedResult]
	disk   *DiskCache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache of size entries backed by disk (which may be nil).
func NewCache(size int, disk *DiskCache) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	mem, err := lru.New[Digest, *CachedResult](size)
	if err != nil {
		return nil, err
	}
	return &Cache{mem: mem, disk: disk}, nil
}

func (c *Cache) get(key Digest) (*CachedResult, bool) {
	if c == nil {
		return nil, false
	}
	if res, ok := c.mem.Get(key); ok {
		c.hits.Add(1)
		return res, true
	}
	// a corrupt disk entry is treated as a miss and overwritten later
	if res, ok, err := c.disk.Get(key); err == nil && ok {
		c.mem.Add(key, res)
		c.hits.Add(1)
		return res, true
	}
	c.misses.Add(1)
	return nil, false
}

func (c *Cache) put(key Digest, res *CachedResult) error {
	if c == nil {
		return nil
	}
	c.mem.Add(key, res)
	return c.disk.Put(key, res)
}

// Stats returns the number of hits and misses so far.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

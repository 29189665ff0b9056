package dataset

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

type LoadFunc func(Source) (*Dataset, error)

// Cache holds one loaded dataset per source descriptor. Entries are written
// once and only replaced by an explicit Reload.
type Cache struct {
	load  LoadFunc
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*Dataset
	// gen is bumped by Invalidate; a load that started under an older
	// generation must not store its result.
	gen map[string]uint64
}

func NewCache(load LoadFunc) *Cache {
	if load == nil {
		load = Load
	}
	return &Cache{load: load, entries: map[string]*Dataset{}, gen: map[string]uint64{}}
}

// Get returns the cached dataset for src, loading it on first use. Failed
// loads are not cached.
func (c *Cache) Get(src Source) (*Dataset, error) {
	key := src.Fingerprint()
	if ds, ok := c.lookup(key); ok {
		return ds, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		ds, ok := c.entries[key]
		gen := c.gen[key]
		c.mu.Unlock()
		if ok {
			return ds, nil
		}
		ds, err := c.load(src)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen[key] == gen {
			c.entries[key] = ds
		}
		c.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Reload drops the cached entry for src and loads it again.
func (c *Cache) Reload(src Source) (*Dataset, error) {
	c.Invalidate(src)
	return c.Get(src)
}

func (c *Cache) Invalidate(src Source) {
	key := src.Fingerprint()
	c.mu.Lock()
	c.gen[key]++
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) (*Dataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ds, ok := c.entries[key]
	return ds, ok
}

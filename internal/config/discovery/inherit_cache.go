package discovery

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultInheritCacheSize bounds the number of base files whose resolved
// parents are remembered.
const DefaultInheritCacheSize = 512

type inheritEntry struct {
	baseModTime time.Time
	parents     []*RawConfig
}

func (e *inheritEntry) release() {
	releaseAll(e.parents)
	e.parents = nil
}

// InheritCache remembers resolved parent lists per base file, keyed by the
// base's canonical path. A hit is valid only if the base and every parent
// still have the modification times recorded at insertion.
//
// The cache holds one reference on every cached parent; evicted or
// invalidated entries give theirs back.
type InheritCache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, *inheritEntry]
}

// NewInheritCache creates a cache holding up to size base files.
func NewInheritCache(size int) (*InheritCache, error) {
	if size <= 0 {
		size = DefaultInheritCacheSize
	}
	c, err := lru.NewWithEvict(size, func(_ string, e *inheritEntry) {
		e.release()
	})
	if err != nil {
		return nil, err
	}
	return &InheritCache{lru: c}, nil
}

// get returns referenced copies of the cached parents of base.
func (c *InheritCache) get(base *RawConfig) ([]*RawConfig, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := base.Canonical()
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !e.baseModTime.Equal(base.ModTime()) {
		c.lru.Remove(key)
		return nil, false
	}
	for _, p := range e.parents {
		if p.Source().Changed() {
			c.lru.Remove(key)
			return nil, false
		}
	}

	out := make([]*RawConfig, len(e.parents))
	for i, p := range e.parents {
		out[i] = p.Ref()
	}
	return out, true
}

func (c *InheritCache) put(base *RawConfig, parents []*RawConfig) {
	e := &inheritEntry{
		baseModTime: base.ModTime(),
		parents:     make([]*RawConfig, len(parents)),
	}
	for i, p := range parents {
		e.parents[i] = p.Ref()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Remove first so the replaced entry releases its references.
	c.lru.Remove(base.Canonical())
	c.lru.Add(base.Canonical(), e)
}

// Len returns the number of cached base files.
func (c *InheritCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge drops every entry, releasing the cached parents.
func (c *InheritCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

package asset

import (
	"github.com/opd-ai/customalbums/host"
	"github.com/sirupsen/logrus"
)

// Cache maps asset names to host objects. Entries whose object the host
// has destroyed are dropped the next time they are looked up.
type Cache struct {
	rt      host.Runtime
	entries map[string]host.Handle
	purges  int
}

// NewCache creates an empty cache.
func NewCache(rt host.Runtime) *Cache {
	return &Cache{
		rt:      rt,
		entries: make(map[string]host.Handle),
	}
}

// Get returns the live object cached under name.
func (c *Cache) Get(name string) (host.Handle, bool) {
	h, ok := c.entries[name]
	if !ok {
		return host.Nil, false
	}
	if c.rt.Alive(h) {
		return h, true
	}

	delete(c.entries, name)
	c.purges++

	logrus.WithFields(logrus.Fields{
		"function": "Cache.Get",
		"name":     name,
	}).Debug("Removing destroyed asset from cache")

	return host.Nil, false
}

// Put caches h under name. Nil handles are ignored.
func (c *Cache) Put(name string, h host.Handle) {
	if h.IsNil() {
		return
	}
	c.entries[name] = h
}

// Len returns the number of entries, including any not yet found dead.
func (c *Cache) Len() int { return len(c.entries) }

// Purges returns how many dead entries have been dropped.
func (c *Cache) Purges() int { return c.purges }

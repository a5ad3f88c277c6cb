package server

import (
	"sync"

	"github.com/scrapter/scrapter-front/internal/log"
)

// LayoutCache holds server-rendered layout content keyed by identity. The
// session issuer invalidates it wholesale on login and signout so every
// layout re-reads the new identity instead of serving content rendered for
// the previous one.
type LayoutCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewLayoutCache creates an empty layout cache
func NewLayoutCache() *LayoutCache {
	return &LayoutCache{
		entries: make(map[string][]byte),
	}
}

// Get returns cached content for an identity key
func (c *LayoutCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	content, ok := c.entries[key]
	return content, ok
}

// Put stores rendered content for an identity key
func (c *LayoutCache) Put(key string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = content
}

// Invalidate drops all cached content
func (c *LayoutCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > 0 {
		log.LogDebugWithFields("cache", "Layout cache invalidated", map[string]any{
			"entries": len(c.entries),
		})
	}
	c.entries = make(map[string][]byte)
}

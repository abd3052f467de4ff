// Schema files get read once per change, not once per structure. The
// cache is an ordinary value the caller constructs and passes around;
// there is no package-level state, so two independent pipelines can
// run two caches without seeing each other.

package meta

import (
	"os"
	"sync"
	"time"
)

type cacheEntry struct {
	mod  time.Time
	prov *Static
}

// A Cache hands out providers for schema files, re-reading a file
// only when its modification time changes. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Load returns the provider for path, from cache when the file is
// unchanged since the last read.
func (c *Cache) Load(path string) (*Static, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok && e.mod.Equal(fi.ModTime()) {
		return e.prov, nil
	}
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.entries[path] = cacheEntry{mod: fi.ModTime(), prov: p}
	return p, nil
}

package view

import (
	"sync"

	"github.com/hpungsan/cuebin/internal/catalog"
)

// IndexCache memoizes the asset index of the latest catalog revision.
// Snapshots with a non-positive revision are never cached. Returned rows
// are shared and must not be modified.
type IndexCache struct {
	mu       sync.Mutex
	revision int64
	rows     []Row
	hits     int
	misses   int
}

// Rows returns the index for s, rebuilding it when the revision changed.
func (c *IndexCache) Rows(s catalog.Snapshot) []Row {
	if s.Revision <= 0 {
		return BuildIndex(s)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rows != nil && c.revision == s.Revision {
		c.hits++
		return c.rows
	}
	c.misses++
	c.rows = BuildIndex(s)
	c.revision = s.Revision
	return c.rows
}

// Invalidate drops the cached index.
func (c *IndexCache) Invalidate() {
	c.mu.Lock()
	c.rows = nil
	c.revision = 0
	c.mu.Unlock()
}

// Counts returns cache hits and misses.
func (c *IndexCache) Counts() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

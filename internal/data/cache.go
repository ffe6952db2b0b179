package data

import (
	"fmt"
	"os"
	"sync"

	"mining-pnl/internal/model"

	lru "github.com/hashicorp/golang-lru"
)

// TableCache keeps recently parsed reference tables in memory.
// Entries are keyed by path, size and modification time, so an edited
// sheet is re-read on the next lookup.
type TableCache struct {
	mu    sync.Mutex
	cache *lru.Cache

	hits   uint64
	misses uint64
}

func NewTableCache(size int) (*TableCache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be > 0, got %d", size)
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &TableCache{cache: c}, nil
}

// Load returns the table at path, parsing it on a miss.
// A nil cache always reads from disk.
func (c *TableCache) Load(path string) (*model.ReferenceTable, error) {
	if c == nil {
		return LoadReferenceTable(path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat reference table: %w", err)
	}
	key := fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())

	c.mu.Lock()
	if v, ok := c.cache.Get(key); ok {
		c.hits++
		c.mu.Unlock()
		return v.(*model.ReferenceTable), nil
	}
	c.misses++
	c.mu.Unlock()

	t, err := LoadReferenceTable(path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, t)
	return t, nil
}

// Stats returns hit and miss counters.
func (c *TableCache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *TableCache) Purge() {
	if c == nil {
		return
	}
	c.cache.Purge()
}

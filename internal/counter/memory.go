package counter

import (
	"context"

	"github.com/patrickmn/go-cache"
)

var _ Counter = (*MemoryCounter)(nil)

// MemoryCounter keeps the count in process memory. It is lost on restart
// and not shared between instances.
type MemoryCounter struct {
	key   string
	cache *cache.Cache
}

func NewMemoryCounter(table string) *MemoryCounter {
	return &MemoryCounter{
		key:   recordKey(table),
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (c *MemoryCounter) Up(ctx context.Context) (int64, error) {
	// Add fails when the key already exists, which is fine.
	_ = c.cache.Add(c.key, int64(0), cache.NoExpiration)
	n, err := c.cache.IncrementInt64(c.key, 1)
	return n, storeError("memory", "Up", err)
}

func (c *MemoryCounter) Get(ctx context.Context) (int64, error) {
	v, ok := c.cache.Get(c.key)
	if !ok {
		return 0, nil
	}
	return v.(int64), nil
}

func (c *MemoryCounter) Close() error {
	return nil
}

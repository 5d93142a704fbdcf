package util

import (
	"sync"

	"github.com/benbjohnson/immutable"
)

// ComputeCache is the "method → result" concurrent cache with
// compute-if-absent semantics that spec §5 requires for cross-thread
// caches within a pass: the compute function must be free of side effects
// on other keys, and concurrent ComputeIfAbsent calls for the same key
// converge on the single value first committed for it.
type ComputeCache[K any, V any] struct {
	mu         sync.Mutex
	underlying *immutable.Map[K, V]
}

func NewComputeCache[K any, V any](hasher immutable.Hasher[K]) *ComputeCache[K, V] {
	return &ComputeCache[K, V]{underlying: immutable.NewMap[K, V](hasher)}
}

// ComputeIfAbsent returns the cached value for key, computing and storing it
// via compute if absent. If two goroutines race on the same absent key, both
// may call compute, but only one result is retained; callers must not rely
// on compute running exactly once, only on every caller seeing the same
// settled value afterward.
func (c *ComputeCache[K, V]) ComputeIfAbsent(key K, compute func() V) V {
	c.mu.Lock()
	if v, ok := c.underlying.Get(key); ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	v := compute()

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.underlying.Get(key); ok {
		return existing
	}
	c.underlying = c.underlying.Set(key, v)
	return v
}

func (c *ComputeCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.underlying.Get(key)
}

func (c *ComputeCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.underlying.Len()
}

// Package cache is a bounded, content addressed result cache. Concurrent
// misses on the same key share one computation.
package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultSize is the entry limit used when New is given a non-positive size.
const DefaultSize = 128

type entry[T any] struct {
	key string
	val T
}

// Cache maps keys to computed values with least recently used eviction.
// Failed computations are not stored.
type Cache[T any] struct {
	mu      sync.Mutex
	max     int
	entries map[string]*list.Element
	order   *list.List
	// gen changes on Clear and Evict so computations started before do not
	// repopulate the cache.
	gen   uint64
	group singleflight.Group
}

func New[T any](size int) *Cache[T] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache[T]{
		max:     size,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached value for key, computing it on a miss. Callers
// waiting on a shared computation return early when their own ctx ends;
// the computation itself runs detached from any single caller's
// cancellation.
func (c *Cache[T]) Get(ctx context.Context, key string, compute func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Peek(key); ok {
		return v, nil
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := compute(detached)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.addLocked(key, v)
		}
		c.mu.Unlock()
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache: unexpected value type %T", res.Val)
		}
		return v, nil
	}
}

// Peek returns a cached value without computing it.
func (c *Cache[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry[T]).val, true
	}
	var zero T
	return zero, false
}

// Add stores a value directly.
func (c *Cache[T]) Add(key string, val T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(key, val)
}

func (c *Cache[T]) addLocked(key string, val T) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*entry[T]).val = val
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&entry[T]{key: key, val: val})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry[T]).key)
	}
}

// Evict removes key and reports whether it was present.
func (c *Cache[T]) Evict(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.group.Forget(key)
	el, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.entries, key)
	return true
}

// Clear drops every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for key := range c.entries {
		c.group.Forget(key)
	}
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len is the number of stored entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

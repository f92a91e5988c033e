package store

import (
	"fmt"
	"sync"
)

// Collection is an insertion-ordered sequence of entities of one kind.
// Entities are stored by pointer and treated as immutable once stored;
// updates go through Replace with a modified copy.
type Collection[T any] struct {
	kind  string
	key   func(*T) string
	mu    sync.RWMutex
	items []*T
}

func newCollection[T any](kind string, key func(*T) string, seed []T) *Collection[T] {
	c := &Collection[T]{
		kind:  kind,
		key:   key,
		items: make([]*T, 0, len(seed)),
	}
	for i := range seed {
		item := seed[i]
		c.items = append(c.items, &item)
	}
	return c
}

func (c *Collection[T]) Kind() string {
	return c.kind
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// NextID follows the {kind}-{len+1} scheme. Only unique when called and
// followed by Append under DataStore.Mutate.
func (c *Collection[T]) NextID() string {
	return fmt.Sprintf("%s-%d", c.kind, c.Len()+1)
}

// Find scans for the entity with the given id.
func (c *Collection[T]) Find(id string) (*T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.key(item) == id {
			return item, true
		}
	}
	return nil, false
}

// Exists reports whether id resolves.
func (c *Collection[T]) Exists(id string) bool {
	_, ok := c.Find(id)
	return ok
}

// All returns the entities in insertion order. The slice is a copy.
func (c *Collection[T]) All() []*T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*T, len(c.items))
	copy(out, c.items)
	return out
}

// Filter returns the entities accepted by pred, preserving order.
// A nil pred accepts everything.
func (c *Collection[T]) Filter(pred func(*T) bool) []*T {
	if pred == nil {
		return c.All()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*T
	for _, item := range c.items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Count returns how many entities pred accepts.
func (c *Collection[T]) Count(pred func(*T) bool) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, item := range c.items {
		if pred == nil || pred(item) {
			n++
		}
	}
	return n
}

// List filters with pred and returns the window [offset, offset+limit).
// An offset past the end yields an empty slice. Callers apply defaults;
// negative values are treated as zero here.
func (c *Collection[T]) List(pred func(*T) bool, offset, limit int) []*T {
	return Page(c.Filter(pred), offset, limit)
}

func (c *Collection[T]) Append(item *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

// Replace swaps the stored entity that has the same id as item.
// It returns false when no such entity exists.
func (c *Collection[T]) Replace(item *T) bool {
	id := c.key(item)
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.items {
		if c.key(existing) == id {
			c.items[i] = item
			return true
		}
	}
	return false
}

// Page slices items to [offset, offset+limit), clamped to bounds.
func Page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	if limit > len(items)-offset {
		limit = len(items) - offset
	}
	return items[offset : offset+limit]
}

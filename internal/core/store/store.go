// Package store holds the in-memory entity collections backing every resolver.
package store

import (
	"sync"

	"github.com/rl1809/graphql-bench/internal/core/domain"
)

// DataStore owns the five entity collections. Instances are independent, so
// tests can run isolated stores side by side.
type DataStore struct {
	Users      *Collection[domain.User]
	Categories *Collection[domain.Category]
	Products   *Collection[domain.Product]
	Reviews    *Collection[domain.Review]
	Orders     *Collection[domain.Order]

	writeMu sync.Mutex
}

// New builds a store seeded with snapshot. A nil snapshot yields empty collections.
func New(snapshot *domain.Snapshot) *DataStore {
	if snapshot == nil {
		snapshot = &domain.Snapshot{}
	}
	return &DataStore{
		Users:      newCollection(domain.KindUser, func(u *domain.User) string { return u.ID }, snapshot.Users),
		Categories: newCollection(domain.KindCategory, func(c *domain.Category) string { return c.ID }, snapshot.Categories),
		Products:   newCollection(domain.KindProduct, func(p *domain.Product) string { return p.ID }, snapshot.Products),
		Reviews:    newCollection(domain.KindReview, func(r *domain.Review) string { return r.ID }, snapshot.Reviews),
		Orders:     newCollection(domain.KindOrder, func(o *domain.Order) string { return o.ID }, snapshot.Orders),
	}
}

// Mutate runs fn while holding the writer lock. Every write sequence
// (validate, assign id, append or replace) must run inside Mutate so two
// mutations never interleave and ids stay unique. fn must not sleep.
func (s *DataStore) Mutate(fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return fn()
}

// Snapshot copies the current contents of every collection.
func (s *DataStore) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Users:      values(s.Users.All()),
		Categories: values(s.Categories.All()),
		Products:   values(s.Products.All()),
		Reviews:    values(s.Reviews.All()),
		Orders:     values(s.Orders.All()),
	}
}

func values[T any](items []*T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = *item
	}
	return out
}

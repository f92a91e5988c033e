package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/core/latency"
	"github.com/rl1809/graphql-bench/internal/core/store"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type sleepLog struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (l *sleepLog) sleep(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waits = append(l.waits, d)
}

func (l *sleepLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waits)
}

func newTestResolver(t *testing.T, snap *domain.Snapshot) (*Resolver, *store.DataStore) {
	t.Helper()
	ds := store.New(snap)
	return NewResolver(ds, latency.Disabled(), nil), ds
}

// newRecordingResolver sleeps through a recorder instead of the clock.
func newRecordingResolver(t *testing.T, snap *domain.Snapshot) (*Resolver, *sleepLog) {
	t.Helper()
	rec := &sleepLog{}
	ds := store.New(snap)
	return NewResolver(ds, latency.New(latency.WithSleeper(rec.sleep)), nil), rec
}

// shopSnapshot is a small hand-built dataset:
//
//	users:      user-1 (ADMIN), user-2, user-3
//	categories: category-1, category-2
//	products:   product-1 "Blue Widget" (c2, 10.00)
//	            product-2 "Stand" mentions widget in description (c1, 25.50)
//	            product-3 "Gadget" mentions WIDGETS in description (c2, 99.99)
//	            product-4 "Lamp" (c2, 5.25)
//	reviews:    product-2 x2, product-3 x2, product-1 x1
//	orders:     order-1 user-1 PENDING, order-2 user-1 SHIPPED, order-3 user-2 PENDING
func shopSnapshot() *domain.Snapshot {
	users := []domain.User{
		{ID: "user-1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleAdmin, CreatedAt: baseTime, UpdatedAt: baseTime},
		{ID: "user-2", Name: "Bob", Email: "bob@example.com", Role: domain.RoleCustomer, CreatedAt: baseTime, UpdatedAt: baseTime},
		{ID: "user-3", Name: "Cy", Email: "cy@example.com", Role: domain.RoleCustomer, CreatedAt: baseTime, UpdatedAt: baseTime},
	}
	categories := []domain.Category{
		{ID: "category-1", Name: "Hardware"},
		{ID: "category-2", Name: "Gizmos"},
	}
	products := []domain.Product{
		{ID: "product-1", Name: "Blue Widget", Price: 10.00, Inventory: 5, CategoryID: "category-2", CreatedAt: baseTime, UpdatedAt: baseTime},
		{ID: "product-2", Name: "Stand", Description: ptr("holds any widget"), Price: 25.50, Inventory: 1, CategoryID: "category-1", CreatedAt: baseTime, UpdatedAt: baseTime},
		{ID: "product-3", Name: "Gadget", Description: ptr("Works with WIDGETS"), Price: 99.99, Inventory: 0, CategoryID: "category-2", CreatedAt: baseTime, UpdatedAt: baseTime},
		{ID: "product-4", Name: "Lamp", Price: 5.25, Inventory: 9, CategoryID: "category-2", CreatedAt: baseTime, UpdatedAt: baseTime},
	}
	reviews := []domain.Review{
		{ID: "review-1", Rating: 5, UserID: "user-1", ProductID: "product-2", CreatedAt: baseTime.Add(1 * time.Hour)},
		{ID: "review-2", Rating: 4, UserID: "user-2", ProductID: "product-3", CreatedAt: baseTime.Add(3 * time.Hour)},
		{ID: "review-3", Rating: 3, UserID: "user-3", ProductID: "product-2", CreatedAt: baseTime.Add(2 * time.Hour)},
		{ID: "review-4", Rating: 2, UserID: "user-1", ProductID: "product-3", CreatedAt: baseTime.Add(3 * time.Hour)},
		{ID: "review-5", Rating: 1, UserID: "user-2", ProductID: "product-1", CreatedAt: baseTime},
	}
	orders := []domain.Order{
		{ID: "order-1", UserID: "user-1", Status: domain.OrderStatusPending, Items: []domain.OrderItem{
			{ID: "order-item-0-0", ProductID: "product-1", Quantity: 2, Price: 10.00},
		}, Total: 20.00, CreatedAt: baseTime, UpdatedAt: baseTime},
		{ID: "order-2", UserID: "user-1", Status: domain.OrderStatusShipped, Items: []domain.OrderItem{
			{ID: "order-item-1-0", ProductID: "product-4", Quantity: 1, Price: 5.25},
		}, Total: 5.25, CreatedAt: baseTime, UpdatedAt: baseTime},
		{ID: "order-3", UserID: "user-2", Status: domain.OrderStatusPending, Items: []domain.OrderItem{
			{ID: "order-item-2-0", ProductID: "product-3", Quantity: 1, Price: 99.99},
		}, Total: 99.99, CreatedAt: baseTime, UpdatedAt: baseTime},
	}
	return &domain.Snapshot{Users: users, Categories: categories, Products: products, Reviews: reviews, Orders: orders}
}

func productIDs(products []*domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func userIDs(users []*domain.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func numberedUsers(n int) []domain.User {
	users := make([]domain.User, n)
	for i := range users {
		users[i] = domain.User{ID: fmt.Sprintf("user-%d", i+1), Name: fmt.Sprintf("User %d", i+1), Role: domain.RoleCustomer}
	}
	return users
}

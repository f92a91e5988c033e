// Package seed fabricates the benchmark dataset.
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rl1809/graphql-bench/internal/core/domain"
)

const (
	adminCount         = 10
	maxItemsPerOrder   = 5
	maxQuantity        = 5
	createdWindow      = 10_000_000_000 * time.Millisecond
	updatedWindow      = 1_000_000_000 * time.Millisecond
	commentProbability = 0.8
)

type Options struct {
	Users      int
	Categories int
	Products   int
	Reviews    int
	Orders     int
	Seed       uint64
	// Now anchors every timestamp; zero means time.Now().
	Now        time.Time
}

// DefaultOptions matches the published benchmark dataset sizes.
func DefaultOptions() Options {
	return Options{
		Users:      100,
		Categories: 10,
		Products:   1000,
		Reviews:    5000,
		Orders:     2000,
		Seed:       1,
	}
}

// Validate rejects sizes that would leave foreign keys with nothing to point at.
func (o Options) Validate() error {
	switch {
	case o.Users < 0 || o.Categories < 0 || o.Products < 0 || o.Reviews < 0 || o.Orders < 0:
		return fmt.Errorf("seed sizes must not be negative")
	case o.Products > 0 && o.Categories == 0:
		return fmt.Errorf("products need at least one category")
	case (o.Reviews > 0 || o.Orders > 0) && (o.Users == 0 || o.Products == 0):
		return fmt.Errorf("reviews and orders need at least one user and one product")
	}
	return nil
}

// Generate builds a snapshot whose foreign keys all resolve and whose order
// totals equal the sum of their items. Options with the same Seed and a fixed
// Now always yield the same snapshot.
func Generate(opts Options) *domain.Snapshot {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	g := &generator{
		rnd: rand.New(rand.NewPCG(opts.Seed, opts.Seed+1)),
		now: opts.Now,
	}

	snap := &domain.Snapshot{
		Users:      make([]domain.User, opts.Users),
		Categories: make([]domain.Category, opts.Categories),
		Products:   make([]domain.Product, opts.Products),
		Reviews:    make([]domain.Review, opts.Reviews),
		Orders:     make([]domain.Order, opts.Orders),
	}

	for i := range snap.Users {
		role := domain.RoleCustomer
		if i < adminCount {
			role = domain.RoleAdmin
		}
		snap.Users[i] = domain.User{
			ID:        fmt.Sprintf("user-%d", i+1),
			Name:      fmt.Sprintf("User %d", i+1),
			Email:     fmt.Sprintf("user%d@example.com", i+1),
			Role:      role,
			CreatedAt: g.past(createdWindow),
			UpdatedAt: g.past(updatedWindow),
		}
	}

	for i := range snap.Categories {
		snap.Categories[i] = domain.Category{
			ID:   fmt.Sprintf("category-%d", i+1),
			Name: fmt.Sprintf("Category %d", i+1),
		}
	}

	for i := range snap.Products {
		description := fmt.Sprintf("This is the description for product %d. It contains detailed information about the product.", i+1)
		snap.Products[i] = domain.Product{
			ID:          fmt.Sprintf("product-%d", i+1),
			Name:        fmt.Sprintf("Product %d", i+1),
			Description: &description,
			Price:       float64(g.rnd.IntN(100000)) / 100,
			Inventory:   g.rnd.IntN(1000),
			CategoryID:  g.pick("category", opts.Categories),
			CreatedAt:   g.past(createdWindow),
			UpdatedAt:   g.past(updatedWindow),
		}
	}

	for i := range snap.Reviews {
		var comment *string
		if g.rnd.Float64() < commentProbability {
			c := fmt.Sprintf("This is review %d with some feedback about the product.", i+1)
			comment = &c
		}
		snap.Reviews[i] = domain.Review{
			ID:        fmt.Sprintf("review-%d", i+1),
			Rating:    g.rnd.IntN(5) + 1,
			Comment:   comment,
			UserID:    g.pick("user", opts.Users),
			ProductID: g.pick("product", opts.Products),
			CreatedAt: g.past(createdWindow),
		}
	}

	for i := range snap.Orders {
		items := make([]domain.OrderItem, 0, maxItemsPerOrder)
		if opts.Products > 0 {
			count := g.rnd.IntN(maxItemsPerOrder) + 1
			for j := 0; j < count; j++ {
				n := g.rnd.IntN(opts.Products)
				items = append(items, domain.OrderItem{
					ID:        fmt.Sprintf("order-item-%d-%d", i, j),
					ProductID: snap.Products[n].ID,
					Quantity:  g.rnd.IntN(maxQuantity) + 1,
					Price:     snap.Products[n].Price,
				})
			}
		}
		snap.Orders[i] = domain.Order{
			ID:        fmt.Sprintf("order-%d", i+1),
			UserID:    g.pick("user", opts.Users),
			Items:     items,
			Status:    domain.OrderStatuses[g.rnd.IntN(len(domain.OrderStatuses))],
			Total:     domain.ComputeTotal(items),
			CreatedAt: g.past(createdWindow),
			UpdatedAt: g.past(updatedWindow),
		}
	}

	return snap
}

type generator struct {
	rnd *rand.Rand
	now time.Time
}

// past returns a millisecond-aligned instant up to window before now.
func (g *generator) past(window time.Duration) time.Time {
	offset := time.Duration(g.rnd.Int64N(int64(window/time.Millisecond))) * time.Millisecond
	return g.now.Add(-offset).Truncate(time.Millisecond)
}

func (g *generator) pick(kind string, n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%s-%d", kind, g.rnd.IntN(n)+1)
}

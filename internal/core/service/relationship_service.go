package service

import (
	"context"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/core/store"
	"github.com/rl1809/graphql-bench/internal/port"
)

// Nested field joins. They scan the store directly and never sleep.

var (
	_ port.UserResolver      = userRelations{}
	_ port.ProductResolver   = productRelations{}
	_ port.CategoryResolver  = categoryRelations{}
	_ port.ReviewResolver    = reviewRelations{}
	_ port.OrderResolver     = orderRelations{}
	_ port.OrderItemResolver = orderItemRelations{}
)

type userRelations struct{ store *store.DataStore }

func (r userRelations) Orders(_ context.Context, obj *domain.User) ([]*domain.Order, error) {
	return r.store.Orders.Filter(func(o *domain.Order) bool { return o.UserID == obj.ID }), nil
}

type productRelations struct{ store *store.DataStore }

func (r productRelations) Category(_ context.Context, obj *domain.Product) (*domain.Category, error) {
	category, _ := r.store.Categories.Find(obj.CategoryID)
	return category, nil
}

func (r productRelations) Reviews(_ context.Context, obj *domain.Product) ([]*domain.Review, error) {
	return r.store.Reviews.Filter(func(rv *domain.Review) bool { return rv.ProductID == obj.ID }), nil
}

func (r productRelations) ReviewCount(_ context.Context, obj *domain.Product) (int, error) {
	return r.store.Reviews.Count(func(rv *domain.Review) bool { return rv.ProductID == obj.ID }), nil
}

type categoryRelations struct{ store *store.DataStore }

func (r categoryRelations) Products(_ context.Context, obj *domain.Category) ([]*domain.Product, error) {
	return r.store.Products.Filter(func(p *domain.Product) bool { return p.CategoryID == obj.ID }), nil
}

type reviewRelations struct{ store *store.DataStore }

func (r reviewRelations) User(_ context.Context, obj *domain.Review) (*domain.User, error) {
	user, _ := r.store.Users.Find(obj.UserID)
	return user, nil
}

func (r reviewRelations) Product(_ context.Context, obj *domain.Review) (*domain.Product, error) {
	product, _ := r.store.Products.Find(obj.ProductID)
	return product, nil
}

type orderRelations struct{ store *store.DataStore }

func (r orderRelations) User(_ context.Context, obj *domain.Order) (*domain.User, error) {
	user, _ := r.store.Users.Find(obj.UserID)
	return user, nil
}

// Items pairs each stored item with its product as of now.
func (r orderRelations) Items(_ context.Context, obj *domain.Order) ([]*domain.OrderLine, error) {
	lines := make([]*domain.OrderLine, len(obj.Items))
	for i, item := range obj.Items {
		product, _ := r.store.Products.Find(item.ProductID)
		lines[i] = &domain.OrderLine{OrderItem: item, Product: product}
	}
	return lines, nil
}

type orderItemRelations struct{ store *store.DataStore }

func (r orderItemRelations) Product(_ context.Context, obj *domain.OrderItem) (*domain.Product, error) {
	product, _ := r.store.Products.Find(obj.ProductID)
	return product, nil
}

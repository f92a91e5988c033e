package service

import (
	"log/slog"

	"github.com/rl1809/graphql-bench/internal/core/latency"
	"github.com/rl1809/graphql-bench/internal/core/store"
	"github.com/rl1809/graphql-bench/internal/port"
)

var _ port.ResolverRoot = (*Resolver)(nil)

// Resolver is the root handed to transports. It owns no state beyond the
// store and latency model shared by every resolver group.
type Resolver struct {
	store    *store.DataStore
	query    *QueryService
	mutation *MutationService
}

func NewResolver(ds *store.DataStore, lat *latency.Model, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:    ds,
		query:    NewQueryService(ds, lat, logger),
		mutation: NewMutationService(ds, lat, logger),
	}
}

func (r *Resolver) Query() port.QueryResolver         { return r.query }
func (r *Resolver) Mutation() port.MutationResolver   { return r.mutation }
func (r *Resolver) User() port.UserResolver           { return userRelations{r.store} }
func (r *Resolver) Product() port.ProductResolver     { return productRelations{r.store} }
func (r *Resolver) Category() port.CategoryResolver   { return categoryRelations{r.store} }
func (r *Resolver) Review() port.ReviewResolver       { return reviewRelations{r.store} }
func (r *Resolver) Order() port.OrderResolver         { return orderRelations{r.store} }
func (r *Resolver) OrderItem() port.OrderItemResolver { return orderItemRelations{r.store} }

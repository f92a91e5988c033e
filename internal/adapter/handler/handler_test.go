package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/graphql-bench/internal/adapter/graphql"
	"github.com/rl1809/graphql-bench/internal/core/latency"
	"github.com/rl1809/graphql-bench/internal/core/seed"
	"github.com/rl1809/graphql-bench/internal/core/service"
	"github.com/rl1809/graphql-bench/internal/core/store"
)

func newTestExecutor(t *testing.T) (*graphql.Executor, *store.DataStore) {
	t.Helper()

	schema, err := graphql.LoadSchema()
	require.NoError(t, err)

	opts := seed.DefaultOptions()
	opts.Users, opts.Categories, opts.Products, opts.Reviews, opts.Orders = 20, 3, 30, 60, 15
	ds := store.New(seed.Generate(opts))

	return graphql.NewExecutor(schema, service.NewResolver(ds, latency.Disabled(), nil)), ds
}

package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/core/store"
)

func TestGenerate_DefaultSizes(t *testing.T) {
	snap := Generate(DefaultOptions())

	assert.Equal(t, map[string]int{
		domain.KindUser:     100,
		domain.KindCategory: 10,
		domain.KindProduct:  1000,
		domain.KindReview:   5000,
		domain.KindOrder:    2000,
	}, snap.Counts())

	assert.Equal(t, domain.RoleAdmin, snap.Users[9].Role)
	assert.Equal(t, domain.RoleCustomer, snap.Users[10].Role)
}

func TestGenerate_ForeignKeysResolve(t *testing.T) {
	snap := Generate(Options{Users: 20, Categories: 3, Products: 50, Reviews: 200, Orders: 100, Seed: 9})
	ds := store.New(snap)

	for _, p := range snap.Products {
		require.True(t, ds.Categories.Exists(p.CategoryID), p.ID)
	}
	for _, r := range snap.Reviews {
		require.True(t, ds.Users.Exists(r.UserID), r.ID)
		require.True(t, ds.Products.Exists(r.ProductID), r.ID)
		assert.GreaterOrEqual(t, r.Rating, 1)
		assert.LessOrEqual(t, r.Rating, 5)
	}
	for _, o := range snap.Orders {
		require.True(t, ds.Users.Exists(o.UserID), o.ID)
		require.NotEmpty(t, o.Items)
		for _, item := range o.Items {
			require.True(t, ds.Products.Exists(item.ProductID), item.ID)
		}
		assert.InDelta(t, domain.ComputeTotal(o.Items), o.Total, 1e-9)
		assert.True(t, o.Status.Valid())
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	opts := Options{Users: 5, Categories: 2, Products: 10, Reviews: 10, Orders: 5, Seed: 3, Now: now}

	assert.Equal(t, Generate(opts), Generate(opts))
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	assert.NoError(t, Options{}.Validate())

	assert.Error(t, Options{Users: -1}.Validate())
	assert.Error(t, Options{Products: 3}.Validate())
	assert.Error(t, Options{Categories: 1, Products: 3, Orders: 1}.Validate())
}

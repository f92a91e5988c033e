package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/core/latency"
	"github.com/rl1809/graphql-bench/internal/core/service"
	"github.com/rl1809/graphql-bench/internal/core/store"
	"github.com/rl1809/graphql-bench/internal/port"
)

var created = time.Date(2024, 6, 1, 8, 30, 0, 250_000_000, time.UTC)

func ptr[T any](v T) *T { return &v }

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Users: []domain.User{
			{ID: "user-1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleAdmin, CreatedAt: created, UpdatedAt: created},
			{ID: "user-2", Name: "Bob", Email: "bob@example.com", Role: domain.RoleCustomer, CreatedAt: created, UpdatedAt: created},
		},
		Categories: []domain.Category{
			{ID: "category-1", Name: "Tools"},
		},
		Products: []domain.Product{
			{ID: "product-1", Name: "Hammer", Price: 12.5, Inventory: 4, CategoryID: "category-1", CreatedAt: created, UpdatedAt: created},
			{ID: "product-2", Name: "Wrench", Description: ptr("adjustable"), Price: 20, Inventory: 0, CategoryID: "category-1", CreatedAt: created, UpdatedAt: created},
		},
		Reviews: []domain.Review{
			{ID: "review-1", Rating: 5, Comment: ptr("solid"), UserID: "user-2", ProductID: "product-2", CreatedAt: created},
		},
		Orders: []domain.Order{
			{ID: "order-1", UserID: "user-2", Status: domain.OrderStatusPending, Items: []domain.OrderItem{
				{ID: "order-item-0-0", ProductID: "product-1", Quantity: 2, Price: 12.5},
			}, Total: 25, CreatedAt: created, UpdatedAt: created},
		},
	}
}

func newTestExecutor(t *testing.T, opts ...Option) (*Executor, *store.DataStore) {
	t.Helper()
	schema, err := LoadSchema()
	require.NoError(t, err)
	ds := store.New(testSnapshot())
	return NewExecutor(schema, service.NewResolver(ds, latency.Disabled(), nil), opts...), ds
}

func execute(t *testing.T, e *Executor, query string, vars map[string]any) *Response {
	t.Helper()
	return e.Execute(context.Background(), &Request{Query: query, Variables: vars})
}

func TestExecute_PreservesSelectionOrder(t *testing.T) {
	e, _ := newTestExecutor(t)

	resp := execute(t, e, `{ product(id: "product-2") { price name id description } }`, nil)
	require.Empty(t, resp.Errors)
	assert.Equal(t, `{"product":{"price":20,"name":"Wrench","id":"product-2","description":"adjustable"}}`, string(resp.Data))
}

func TestExecute_NestedRelationships(t *testing.T) {
	e, _ := newTestExecutor(t)

	resp := execute(t, e, `{
		user(id: "user-2") {
			name
			role
			createdAt
			orders {
				id
				total
				status
				items { id quantity price product { name category { name } } }
				user { email }
			}
		}
	}`, nil)
	require.Empty(t, resp.Errors)

	assert.JSONEq(t, `{"user":{
		"name":"Bob",
		"role":"CUSTOMER",
		"createdAt":"2024-06-01T08:30:00.250Z",
		"orders":[{
			"id":"order-1",
			"total":25,
			"status":"PENDING",
			"items":[{"id":"order-item-0-0","quantity":2,"price":12.5,"product":{"name":"Hammer","category":{"name":"Tools"}}}],
			"user":{"email":"bob@example.com"}
		}]
	}}`, string(resp.Data))
}

func TestExecute_AliasesFragmentsAndTypename(t *testing.T) {
	e, _ := newTestExecutor(t)

	resp := execute(t, e, `
		query Catalog {
			first: product(id: "product-1") { ...ProductFields }
			second: product(id: "product-2") { ... on Product { name reviewCount reviews { rating user { name } } } }
			missing: product(id: "product-404") { id }
		}
		fragment ProductFields on Product { __typename id name description }
	`, nil)
	require.Empty(t, resp.Errors)

	assert.JSONEq(t, `{
		"first":{"__typename":"Product","id":"product-1","name":"Hammer","description":null},
		"second":{"name":"Wrench","reviewCount":1,"reviews":[{"rating":5,"user":{"name":"Bob"}}]},
		"missing":null
	}`, string(resp.Data))
}

func TestExecute_SkipAndInclude(t *testing.T) {
	e, _ := newTestExecutor(t)

	resp := execute(t, e, `query ($withEmail: Boolean!) {
		user(id: "user-1") {
			name
			email @include(if: $withEmail)
			role @skip(if: true)
		}
	}`, map[string]any{"withEmail": false})
	require.Empty(t, resp.Errors)
	assert.Equal(t, `{"user":{"name":"Ada"}}`, string(resp.Data))
}

func TestExecute_ArgumentDefaultsAndFilters(t *testing.T) {
	e, _ := newTestExecutor(t)

	resp := execute(t, e, `{
		users { id }
		paged: users(limit: 1, offset: 1) { id }
		cheap: products(maxPrice: 15) { id }
		search: products(search: "WRENCH", categoryId: "category-1") { id }
		topProducts(limit: 1) { id }
		recentReviews { id comment }
		orders(userId: "user-2", status: PENDING) { id }
		categories { id products { id } }
	}`, nil)
	require.Empty(t, resp.Errors)

	assert.JSONEq(t, `{
		"users":[{"id":"user-1"},{"id":"user-2"}],
		"paged":[{"id":"user-2"}],
		"cheap":[{"id":"product-1"}],
		"search":[{"id":"product-2"}],
		"topProducts":[{"id":"product-2"}],
		"recentReviews":[{"id":"review-1","comment":"solid"}],
		"orders":[{"id":"order-1"}],
		"categories":[{"id":"category-1","products":[{"id":"product-1"},{"id":"product-2"}]}]
	}`, string(resp.Data))
}

func TestExecute_CreateOrderWithVariables(t *testing.T) {
	e, ds := newTestExecutor(t)

	var vars map[string]any
	dec := json.NewDecoder(strings.NewReader(`{"userId":"user-1","items":[{"productId":"product-1","quantity":3},{"productId":"product-2","quantity":1}]}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&vars))

	resp := execute(t, e, `mutation Place($userId: ID!, $items: [OrderItemInput!]!) {
		createOrder(userId: $userId, items: $items) { id status total items { id price product { id } } }
	}`, vars)
	require.Empty(t, resp.Errors)

	assert.JSONEq(t, `{"createOrder":{
		"id":"order-2",
		"status":"PENDING",
		"total":57.5,
		"items":[
			{"id":"order-item-2-0","price":12.5,"product":{"id":"product-1"}},
			{"id":"order-item-2-1","price":20,"product":{"id":"product-2"}}
		]
	}}`, string(resp.Data))
	assert.Equal(t, 2, ds.Orders.Len())
}

func TestExecute_MutationNotFoundKeepsSiblings(t *testing.T) {
	e, ds := newTestExecutor(t)

	resp := execute(t, e, `mutation {
		missing: updateOrderStatus(id: "order-9999", status: SHIPPED) { id }
		category: createCategory(name: "Garden") { id name }
	}`, nil)

	require.Len(t, resp.Errors, 1)
	err := resp.Errors[0]
	assert.Equal(t, "Order with ID order-9999 not found", err.Message)
	assert.Equal(t, CodeNotFound, err.Extensions["code"])
	assert.Equal(t, "missing", err.Path.String())
	require.Len(t, err.Locations, 1)
	assert.Equal(t, 2, err.Locations[0].Line)
	assert.True(t, errors.Is(err, service.ErrNotFound))

	assert.Equal(t, `{"missing":null,"category":{"id":"category-2","name":"Garden"}}`, string(resp.Data))
	assert.Equal(t, 2, ds.Categories.Len())
}

func TestExecute_MutationsRunInOrder(t *testing.T) {
	e, _ := newTestExecutor(t)

	resp := execute(t, e, `mutation {
		a: createUser(name: "Cy", email: "cy@example.com") { id role }
		b: updateUser(id: "user-3", role: ADMIN) { id role }
	}`, nil)
	require.Empty(t, resp.Errors)
	assert.Equal(t, `{"a":{"id":"user-3","role":"CUSTOMER"},"b":{"id":"user-3","role":"ADMIN"}}`, string(resp.Data))
}

func TestExecute_RequestErrors(t *testing.T) {
	e, _ := newTestExecutor(t)

	tests := []struct {
		name string
		req  *Request
		code string
	}{
		{"empty query", &Request{}, CodeBadUserInput},
		{"syntax error", &Request{Query: `{ user(id: "1" { id } }`}, CodeParseFailed},
		{"unknown field", &Request{Query: `{ user(id: "1") { nickname } }`}, CodeValidationFailed},
		{"missing variable", &Request{Query: `query ($id: ID!) { user(id: $id) { id } }`}, CodeBadUserInput},
		{"bad enum variable", &Request{
			Query:     `query ($s: OrderStatus) { orders(userId: "user-1", status: $s) { id } }`,
			Variables: map[string]any{"s": "LOST"},
		}, CodeBadUserInput},
		{"ambiguous operation", &Request{Query: `query A { categories { id } } query B { categories { name } }`}, CodeBadUserInput},
		{"unknown operation", &Request{Query: `query A { categories { id } }`, OperationName: "B"}, CodeBadUserInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := e.Execute(context.Background(), tt.req)
			require.NotEmpty(t, resp.Errors)
			assert.Nil(t, resp.Data)
			assert.Equal(t, tt.code, resp.Errors[0].Extensions["code"])
		})
	}
}

func TestExecute_IntArgumentRange(t *testing.T) {
	e, _ := newTestExecutor(t)

	resp := execute(t, e, `{ users(limit: 2147483647, offset: 1) { id } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"users":[{"id":"user-2"}]}`, string(resp.Data))

	tests := []struct {
		name  string
		query string
		vars  map[string]any
	}{
		{"literal", `{ users(limit: 9223372036854775807, offset: 1) { id } }`, nil},
		{"variable", `query ($n: Int) { users(limit: $n, offset: 1) { id } }`,
			map[string]any{"n": json.Number("9223372036854775807")}},
		{"nested input", `mutation { createOrder(userId: "user-1", items: [{productId: "product-1", quantity: 3000000000}]) { id } }`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := execute(t, e, tt.query, tt.vars)
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, CodeBadUserInput, resp.Errors[0].Extensions["code"])
		})
	}
}

func TestToInt_Range(t *testing.T) {
	_, ok := toInt(int64(math.MaxInt32) + 1)
	assert.False(t, ok)
	_, ok = toInt(float64(math.MinInt32) - 1)
	assert.False(t, ok)
	n, ok := toInt(json.Number("-2147483648"))
	assert.True(t, ok)
	assert.Equal(t, math.MinInt32, n)
}

func TestExecute_SelectsNamedOperation(t *testing.T) {
	e, _ := newTestExecutor(t)

	resp := e.Execute(context.Background(), &Request{
		Query:         `query A { categories { id } } query B { categories { name } }`,
		OperationName: "B",
	})
	require.Empty(t, resp.Errors)
	assert.Equal(t, `{"categories":[{"name":"Tools"}]}`, string(resp.Data))
}

func TestExecute_CachesParsedDocuments(t *testing.T) {
	e, _ := newTestExecutor(t)
	query := `{ categories { id } }`

	execute(t, e, query, nil)
	execute(t, e, query, nil)
	assert.Equal(t, 1, e.CachedDocuments())

	execute(t, e, `{ categories { name } }`, nil)
	assert.Equal(t, 2, e.CachedDocuments())

	execute(t, e, `{ nope }`, nil)
	assert.Equal(t, 2, e.CachedDocuments())
}

func TestExecute_CacheDisabled(t *testing.T) {
	e, _ := newTestExecutor(t, WithQueryCache(0, 0))

	resp := execute(t, e, `{ categories { id } }`, nil)
	require.Empty(t, resp.Errors)
	assert.Zero(t, e.CachedDocuments())
}

// rendezvousQuery blocks user and product until both are in flight.
type rendezvousQuery struct {
	port.QueryResolver
	arrived *sync.WaitGroup
}

func (q rendezvousQuery) meet(ctx context.Context) error {
	q.arrived.Done()
	all := make(chan struct{})
	go func() {
		q.arrived.Wait()
		close(all)
	}()
	select {
	case <-all:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("sibling field never started")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q rendezvousQuery) User(ctx context.Context, id string) (*domain.User, error) {
	if err := q.meet(ctx); err != nil {
		return nil, err
	}
	return q.QueryResolver.User(ctx, id)
}

func (q rendezvousQuery) Product(ctx context.Context, id string) (*domain.Product, error) {
	if err := q.meet(ctx); err != nil {
		return nil, err
	}
	return q.QueryResolver.Product(ctx, id)
}

type stubRoot struct {
	*service.Resolver
	query port.QueryResolver
}

func (r stubRoot) Query() port.QueryResolver { return r.query }

func TestExecute_QueryRootFieldsRunConcurrently(t *testing.T) {
	schema, err := LoadSchema()
	require.NoError(t, err)
	resolver := service.NewResolver(store.New(testSnapshot()), latency.Disabled(), nil)
	var arrived sync.WaitGroup
	arrived.Add(2)
	root := stubRoot{Resolver: resolver, query: rendezvousQuery{QueryResolver: resolver.Query(), arrived: &arrived}}

	e := NewExecutor(schema, root)
	resp := execute(t, e, `{ user(id: "user-1") { id } product(id: "product-1") { id } }`, nil)
	require.Empty(t, resp.Errors)
	assert.Equal(t, `{"user":{"id":"user-1"},"product":{"id":"product-1"}}`, string(resp.Data))
}

type failingQuery struct {
	port.QueryResolver
}

func (failingQuery) Users(context.Context, port.Page) ([]*domain.User, error) {
	return nil, errors.New("boom")
}

func TestExecute_NonNullErrorNullsData(t *testing.T) {
	schema, err := LoadSchema()
	require.NoError(t, err)
	resolver := service.NewResolver(store.New(testSnapshot()), latency.Disabled(), nil)
	e := NewExecutor(schema, stubRoot{Resolver: resolver, query: failingQuery{resolver.Query()}})

	resp := execute(t, e, `{ users { id } categories { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "boom", resp.Errors[0].Message)
	assert.Equal(t, CodeInternal, resp.Errors[0].Extensions["code"])
	assert.Equal(t, "users", resp.Errors[0].Path.String())
	assert.Equal(t, "null", string(resp.Data))
}

func TestResponse_JSONShape(t *testing.T) {
	e, _ := newTestExecutor(t)

	resp := execute(t, e, `mutation { updateUser(id: "user-9", name: "x") { id } }`, nil)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, map[string]any{"updateUser": nil}, decoded["data"])

	errs := decoded["errors"].([]any)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]any)
	assert.Equal(t, "User with ID user-9 not found", first["message"])
	assert.Equal(t, []any{"updateUser"}, first["path"])
	assert.Equal(t, map[string]any{"code": CodeNotFound}, first["extensions"])
}

package port

import (
	"context"

	"github.com/rl1809/graphql-bench/internal/core/domain"
)

// QueryResolver serves the root read fields. Single-entity lookups return
// nil without error when the id does not resolve.
type QueryResolver interface {
	User(ctx context.Context, id string) (*domain.User, error)
	Users(ctx context.Context, page Page) ([]*domain.User, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
	Products(ctx context.Context, filter ProductFilter, page Page) ([]*domain.Product, error)
	Categories(ctx context.Context) ([]*domain.Category, error)
	Order(ctx context.Context, id string) (*domain.Order, error)
	Orders(ctx context.Context, filter OrderFilter, page Page) ([]*domain.Order, error)
	TopProducts(ctx context.Context, limit *int) ([]*domain.Product, error)
	RecentReviews(ctx context.Context, limit *int) ([]*domain.Review, error)
}

// MutationResolver serves the root write fields. A failed write leaves
// every collection untouched.
type MutationResolver interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type UserResolver interface {
	Orders(ctx context.Context, obj *domain.User) ([]*domain.Order, error)
}

type ProductResolver interface {
	Category(ctx context.Context, obj *domain.Product) (*domain.Category, error)
	Reviews(ctx context.Context, obj *domain.Product) ([]*domain.Review, error)
	ReviewCount(ctx context.Context, obj *domain.Product) (int, error)
}

type CategoryResolver interface {
	Products(ctx context.Context, obj *domain.Category) ([]*domain.Product, error)
}

type ReviewResolver interface {
	User(ctx context.Context, obj *domain.Review) (*domain.User, error)
	Product(ctx context.Context, obj *domain.Review) (*domain.Product, error)
}

type OrderResolver interface {
	User(ctx context.Context, obj *domain.Order) (*domain.User, error)
	Items(ctx context.Context, obj *domain.Order) ([]*domain.OrderLine, error)
}

type OrderItemResolver interface {
	Product(ctx context.Context, obj *domain.OrderItem) (*domain.Product, error)
}

// ResolverRoot hands out one resolver per GraphQL type.
type ResolverRoot interface {
	Query() QueryResolver
	Mutation() MutationResolver
	User() UserResolver
	Product() ProductResolver
	Category() CategoryResolver
	Review() ReviewResolver
	Order() OrderResolver
	OrderItem() OrderItemResolver
}

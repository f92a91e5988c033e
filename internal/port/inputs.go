package port

import "github.com/rl1809/graphql-bench/internal/core/domain"

// Page is an optional limit/offset pair. Nil or negative values fall back to
// the resolver's defaults.
type Page struct {
	Limit  *int
	Offset *int
}

type ProductFilter struct {
	Search     *string
	CategoryID *string
	MinPrice   *float64
	MaxPrice   *float64
}

type OrderFilter struct {
	UserID string
	Status *domain.OrderStatus
}

type CreateUserInput struct {
	Name  string
	Email string
	Role  domain.Role
}

// UpdateUserInput applies only the non-nil fields.
type UpdateUserInput struct {
	Name  *string
	Email *string
	Role  *domain.Role
}

type CreateProductInput struct {
	Name        string
	Description *string
	Price       float64
	Inventory   int
	CategoryID  string
}

// UpdateProductInput applies only the non-nil fields.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Inventory   *int
	CategoryID  *string
}

type CreateReviewInput struct {
	ProductID string
	UserID    string
	Rating    int
	Comment   *string
}

type OrderItemInput struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	UserID string
	Items  []OrderItemInput
}

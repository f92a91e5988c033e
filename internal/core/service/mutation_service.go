package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/core/latency"
	"github.com/rl1809/graphql-bench/internal/core/store"
	"github.com/rl1809/graphql-bench/internal/logging"
	"github.com/rl1809/graphql-bench/internal/port"
)

var _ port.MutationResolver = (*MutationService)(nil)

// MutationService validates referenced ids and writes to the store. Each
// operation sleeps first and then validates and writes inside a single
// DataStore.Mutate call, so a rejected write never touches a collection.
type MutationService struct {
	store   *store.DataStore
	latency *latency.Model
	logger  *slog.Logger
	now     func() time.Time
}

func NewMutationService(ds *store.DataStore, lat *latency.Model, logger *slog.Logger) *MutationService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &MutationService{
		store:   ds,
		latency: lat,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MutationService) CreateUser(ctx context.Context, input port.CreateUserInput) (*domain.User, error) {
	s.latency.JitteredDelay(30, 50)

	var user *domain.User
	err := s.store.Mutate(func() error {
		now := s.now()
		user = &domain.User{
			ID:        s.store.Users.NextID(),
			Name:      input.Name,
			Email:     input.Email,
			Role:      input.Role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.store.Users.Append(user)
		return nil
	})
	return result(ctx, s.logger, "createUser", user, err)
}

func (s *MutationService) UpdateUser(ctx context.Context, id string, input port.UpdateUserInput) (*domain.User, error) {
	s.latency.JitteredDelay(25, 40)

	var user *domain.User
	err := s.store.Mutate(func() error {
		current, ok := s.store.Users.Find(id)
		if !ok {
			return notFound("User", id)
		}

		next := *current
		if input.Name != nil {
			next.Name = *input.Name
		}
		if input.Email != nil {
			next.Email = *input.Email
		}
		if input.Role != nil {
			next.Role = *input.Role
		}
		next.UpdatedAt = s.now()

		s.store.Users.Replace(&next)
		user = &next
		return nil
	})
	return result(ctx, s.logger, "updateUser", user, err)
}

func (s *MutationService) CreateProduct(ctx context.Context, input port.CreateProductInput) (*domain.Product, error) {
	s.latency.JitteredDelay(35, 50)

	var product *domain.Product
	err := s.store.Mutate(func() error {
		if !s.store.Categories.Exists(input.CategoryID) {
			return notFound("Category", input.CategoryID)
		}

		now := s.now()
		product = &domain.Product{
			ID:          s.store.Products.NextID(),
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			Inventory:   input.Inventory,
			CategoryID:  input.CategoryID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.store.Products.Append(product)
		return nil
	})
	return result(ctx, s.logger, "createProduct", product, err)
}

func (s *MutationService) UpdateProduct(ctx context.Context, id string, input port.UpdateProductInput) (*domain.Product, error) {
	s.latency.JitteredDelay(30, 45)

	var product *domain.Product
	err := s.store.Mutate(func() error {
		current, ok := s.store.Products.Find(id)
		if !ok {
			return notFound("Product", id)
		}
		if input.CategoryID != nil && !s.store.Categories.Exists(*input.CategoryID) {
			return notFound("Category", *input.CategoryID)
		}

		next := *current
		if input.Name != nil {
			next.Name = *input.Name
		}
		if input.Description != nil {
			next.Description = input.Description
		}
		if input.Price != nil {
			next.Price = *input.Price
		}
		if input.Inventory != nil {
			next.Inventory = *input.Inventory
		}
		if input.CategoryID != nil {
			next.CategoryID = *input.CategoryID
		}
		next.UpdatedAt = s.now()

		s.store.Products.Replace(&next)
		product = &next
		return nil
	})
	return result(ctx, s.logger, "updateProduct", product, err)
}

func (s *MutationService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	s.latency.JitteredDelay(20, 30)

	var category *domain.Category
	err := s.store.Mutate(func() error {
		category = &domain.Category{
			ID:   s.store.Categories.NextID(),
			Name: name,
		}
		s.store.Categories.Append(category)
		return nil
	})
	return result(ctx, s.logger, "createCategory", category, err)
}

func (s *MutationService) CreateReview(ctx context.Context, input port.CreateReviewInput) (*domain.Review, error) {
	s.latency.JitteredDelay(25, 40)

	var review *domain.Review
	err := s.store.Mutate(func() error {
		if !s.store.Products.Exists(input.ProductID) {
			return notFound("Product", input.ProductID)
		}
		if !s.store.Users.Exists(input.UserID) {
			return notFound("User", input.UserID)
		}

		review = &domain.Review{
			ID:        s.store.Reviews.NextID(),
			Rating:    input.Rating,
			Comment:   input.Comment,
			UserID:    input.UserID,
			ProductID: input.ProductID,
			CreatedAt: s.now(),
		}
		s.store.Reviews.Append(review)
		return nil
	})
	return result(ctx, s.logger, "createReview", review, err)
}

// CreateOrder captures each product's current price on its item and derives
// the total from those captured prices.
func (s *MutationService) CreateOrder(ctx context.Context, input port.CreateOrderInput) (*domain.Order, error) {
	s.latency.JitteredDelay(50, 70)

	var order *domain.Order
	err := s.store.Mutate(func() error {
		if !s.store.Users.Exists(input.UserID) {
			return notFound("User", input.UserID)
		}

		seq := s.store.Orders.Len() + 1
		items := make([]domain.OrderItem, 0, len(input.Items))
		for idx, in := range input.Items {
			product, ok := s.store.Products.Find(in.ProductID)
			if !ok {
				return notFound("Product", in.ProductID)
			}
			items = append(items, domain.OrderItem{
				ID:        fmt.Sprintf("order-item-%d-%d", seq, idx),
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				Price:     product.Price,
			})
		}

		now := s.now()
		order = &domain.Order{
			ID:        s.store.Orders.NextID(),
			UserID:    input.UserID,
			Items:     items,
			Status:    domain.OrderStatusPending,
			Total:     domain.ComputeTotal(items),
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.store.Orders.Append(order)
		return nil
	})
	return result(ctx, s.logger, "createOrder", order, err)
}

// UpdateOrderStatus accepts any transition.
func (s *MutationService) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	s.latency.JitteredDelay(20, 35)

	var order *domain.Order
	err := s.store.Mutate(func() error {
		current, ok := s.store.Orders.Find(id)
		if !ok {
			return notFound("Order", id)
		}

		next := *current
		next.Status = status
		next.UpdatedAt = s.now()

		s.store.Orders.Replace(&next)
		order = &next
		return nil
	})
	return result(ctx, s.logger, "updateOrderStatus", order, err)
}

func result[T any](ctx context.Context, logger *slog.Logger, field string, value *T, err error) (*T, error) {
	if err != nil {
		logger.DebugContext(ctx, "mutation rejected", "field", field, "error", err)
		return nil, err
	}
	return value, nil
}

package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/core/latency"
	"github.com/rl1809/graphql-bench/internal/core/store"
	"github.com/rl1809/graphql-bench/internal/logging"
	"github.com/rl1809/graphql-bench/internal/port"
)

const (
	defaultLimit              = 10
	defaultOffset             = 0
	defaultTopProductsLimit   = 5
	defaultRecentReviewsLimit = 10
)

var _ port.QueryResolver = (*QueryService)(nil)

type QueryService struct {
	store   *store.DataStore
	latency *latency.Model
	logger  *slog.Logger
}

func NewQueryService(ds *store.DataStore, lat *latency.Model, logger *slog.Logger) *QueryService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &QueryService{store: ds, latency: lat, logger: logger}
}

func (s *QueryService) User(ctx context.Context, id string) (*domain.User, error) {
	s.latency.JitteredDelay(20, 30)
	user, _ := s.store.Users.Find(id)
	return user, nil
}

func (s *QueryService) Users(ctx context.Context, page port.Page) ([]*domain.User, error) {
	offset, limit := window(page)
	result := s.store.Users.List(nil, offset, limit)
	s.latency.ScaledDelay(len(result), 5, 15)
	return result, nil
}

func (s *QueryService) Product(ctx context.Context, id string) (*domain.Product, error) {
	s.latency.JitteredDelay(25, 40)
	product, _ := s.store.Products.Find(id)
	return product, nil
}

func (s *QueryService) Products(ctx context.Context, filter port.ProductFilter, page port.Page) ([]*domain.Product, error) {
	search := ""
	if filter.Search != nil {
		search = strings.ToLower(*filter.Search)
	}
	if search != "" {
		s.latency.JitteredDelay(40, 60)
	}

	match := func(p *domain.Product) bool {
		if search != "" && !p.Matches(search) {
			return false
		}
		if filter.CategoryID != nil && *filter.CategoryID != "" && p.CategoryID != *filter.CategoryID {
			return false
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			return false
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			return false
		}
		return true
	}

	offset, limit := window(page)
	result := s.store.Products.List(match, offset, limit)
	s.latency.ScaledDelay(len(result), 3, 10)

	s.logger.DebugContext(ctx, "products listed", "search", search, "count", len(result))
	return result, nil
}

func (s *QueryService) Categories(ctx context.Context) ([]*domain.Category, error) {
	s.latency.JitteredDelay(15, 20)
	return s.store.Categories.All(), nil
}

func (s *QueryService) Order(ctx context.Context, id string) (*domain.Order, error) {
	s.latency.JitteredDelay(30, 40)
	order, _ := s.store.Orders.Find(id)
	return order, nil
}

func (s *QueryService) Orders(ctx context.Context, filter port.OrderFilter, page port.Page) ([]*domain.Order, error) {
	s.latency.JitteredDelay(25, 30)

	match := func(o *domain.Order) bool {
		if o.UserID != filter.UserID {
			return false
		}
		return filter.Status == nil || o.Status == *filter.Status
	}

	offset, limit := window(page)
	result := s.store.Orders.List(match, offset, limit)
	s.latency.ScaledDelay(len(result), 5, 10)
	return result, nil
}

// TopProducts ranks products by review count. Ties keep collection order.
func (s *QueryService) TopProducts(ctx context.Context, limit *int) ([]*domain.Product, error) {
	s.latency.JitteredDelay(60, 80)

	counts := make(map[string]int)
	for _, r := range s.store.Reviews.All() {
		counts[r.ProductID]++
	}

	ranked := s.store.Products.All()
	slices.SortStableFunc(ranked, func(a, b *domain.Product) int {
		return counts[b.ID] - counts[a.ID]
	})

	return store.Page(ranked, 0, limitOr(limit, defaultTopProductsLimit)), nil
}

// RecentReviews returns the newest reviews first. Ties keep collection order.
func (s *QueryService) RecentReviews(ctx context.Context, limit *int) ([]*domain.Review, error) {
	s.latency.JitteredDelay(30, 40)

	reviews := s.store.Reviews.All()
	slices.SortStableFunc(reviews, func(a, b *domain.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return store.Page(reviews, 0, limitOr(limit, defaultRecentReviewsLimit)), nil
}

func window(page port.Page) (offset, limit int) {
	offset = defaultOffset
	if page.Offset != nil && *page.Offset >= 0 {
		offset = *page.Offset
	}
	return offset, limitOr(page.Limit, defaultLimit)
}

func limitOr(limit *int, def int) int {
	if limit == nil || *limit < 0 {
		return def
	}
	return *limit
}

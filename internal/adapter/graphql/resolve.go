package graphql

import (
	"context"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/port"
)

// resolve produces the raw value of one field. Objects come back as entity
// pointers and lists as []any; completeValue walks them afterwards.
func (x *execution) resolve(ctx context.Context, typeName string, parent any, f *ast.Field) (any, error) {
	switch p := parent.(type) {
	case nil:
		args := f.ArgumentMap(x.vars)
		if err := x.checkIntArgs(f, args); err != nil {
			return nil, err
		}
		if typeName == x.schema.Mutation.Name {
			return x.resolveMutation(ctx, f.Name, args)
		}
		return x.resolveQuery(ctx, f.Name, args)
	case *domain.User:
		return x.resolveUser(ctx, p, f.Name)
	case *domain.Product:
		return x.resolveProduct(ctx, p, f.Name)
	case *domain.Category:
		return x.resolveCategory(ctx, p, f.Name)
	case *domain.Review:
		return x.resolveReview(ctx, p, f.Name)
	case *domain.Order:
		return x.resolveOrder(ctx, p, f.Name)
	case *domain.OrderLine:
		return x.resolveOrderItem(ctx, p, f.Name)
	}
	return nil, fmt.Errorf("no resolver for %s.%s", typeName, f.Name)
}

func (x *execution) resolveQuery(ctx context.Context, name string, args map[string]any) (any, error) {
	q := x.root.Query()
	switch name {
	case "user":
		return one(q.User(ctx, stringArg(args, "id")))
	case "users":
		return many(q.Users(ctx, pageArgs(args)))
	case "product":
		return one(q.Product(ctx, stringArg(args, "id")))
	case "products":
		filter := port.ProductFilter{
			Search:     optString(args, "search"),
			CategoryID: optString(args, "categoryId"),
			MinPrice:   optFloat(args, "minPrice"),
			MaxPrice:   optFloat(args, "maxPrice"),
		}
		return many(q.Products(ctx, filter, pageArgs(args)))
	case "categories":
		return many(q.Categories(ctx))
	case "order":
		return one(q.Order(ctx, stringArg(args, "id")))
	case "orders":
		filter := port.OrderFilter{
			UserID: stringArg(args, "userId"),
			Status: optStatus(args, "status"),
		}
		return many(q.Orders(ctx, filter, pageArgs(args)))
	case "topProducts":
		return many(q.TopProducts(ctx, optInt(args, "limit")))
	case "recentReviews":
		return many(q.RecentReviews(ctx, optInt(args, "limit")))
	}
	return nil, fmt.Errorf("unknown field Query.%s", name)
}

func (x *execution) resolveMutation(ctx context.Context, name string, args map[string]any) (any, error) {
	m := x.root.Mutation()
	switch name {
	case "createUser":
		role := domain.RoleCustomer
		if r := optRole(args, "role"); r != nil {
			role = *r
		}
		return one(m.CreateUser(ctx, port.CreateUserInput{
			Name:  stringArg(args, "name"),
			Email: stringArg(args, "email"),
			Role:  role,
		}))
	case "updateUser":
		return one(m.UpdateUser(ctx, stringArg(args, "id"), port.UpdateUserInput{
			Name:  optString(args, "name"),
			Email: optString(args, "email"),
			Role:  optRole(args, "role"),
		}))
	case "createProduct":
		return one(m.CreateProduct(ctx, port.CreateProductInput{
			Name:        stringArg(args, "name"),
			Description: optString(args, "description"),
			Price:       floatArg(args, "price"),
			Inventory:   intArg(args, "inventory"),
			CategoryID:  stringArg(args, "categoryId"),
		}))
	case "updateProduct":
		return one(m.UpdateProduct(ctx, stringArg(args, "id"), port.UpdateProductInput{
			Name:        optString(args, "name"),
			Description: optString(args, "description"),
			Price:       optFloat(args, "price"),
			Inventory:   optInt(args, "inventory"),
			CategoryID:  optString(args, "categoryId"),
		}))
	case "createCategory":
		return one(m.CreateCategory(ctx, stringArg(args, "name")))
	case "createReview":
		return one(m.CreateReview(ctx, port.CreateReviewInput{
			ProductID: stringArg(args, "productId"),
			UserID:    stringArg(args, "userId"),
			Rating:    intArg(args, "rating"),
			Comment:   optString(args, "comment"),
		}))
	case "createOrder":
		return one(m.CreateOrder(ctx, port.CreateOrderInput{
			UserID: stringArg(args, "userId"),
			Items:  orderItemArgs(args, "items"),
		}))
	case "updateOrderStatus":
		return one(m.UpdateOrderStatus(ctx, stringArg(args, "id"), domain.OrderStatus(stringArg(args, "status"))))
	}
	return nil, fmt.Errorf("unknown field Mutation.%s", name)
}

func (x *execution) resolveUser(ctx context.Context, u *domain.User, name string) (any, error) {
	switch name {
	case "id":
		return u.ID, nil
	case "name":
		return u.Name, nil
	case "email":
		return u.Email, nil
	case "role":
		return string(u.Role), nil
	case "orders":
		return many(x.root.User().Orders(ctx, u))
	case "createdAt":
		return domain.FormatTimestamp(u.CreatedAt), nil
	case "updatedAt":
		return domain.FormatTimestamp(u.UpdatedAt), nil
	}
	return nil, fmt.Errorf("unknown field User.%s", name)
}

func (x *execution) resolveProduct(ctx context.Context, p *domain.Product, name string) (any, error) {
	switch name {
	case "id":
		return p.ID, nil
	case "name":
		return p.Name, nil
	case "description":
		return deref(p.Description), nil
	case "price":
		return p.Price, nil
	case "inventory":
		return p.Inventory, nil
	case "category":
		return one(x.root.Product().Category(ctx, p))
	case "reviews":
		return many(x.root.Product().Reviews(ctx, p))
	case "reviewCount":
		return x.root.Product().ReviewCount(ctx, p)
	case "createdAt":
		return domain.FormatTimestamp(p.CreatedAt), nil
	case "updatedAt":
		return domain.FormatTimestamp(p.UpdatedAt), nil
	}
	return nil, fmt.Errorf("unknown field Product.%s", name)
}

func (x *execution) resolveCategory(ctx context.Context, c *domain.Category, name string) (any, error) {
	switch name {
	case "id":
		return c.ID, nil
	case "name":
		return c.Name, nil
	case "products":
		return many(x.root.Category().Products(ctx, c))
	}
	return nil, fmt.Errorf("unknown field Category.%s", name)
}

func (x *execution) resolveReview(ctx context.Context, r *domain.Review, name string) (any, error) {
	switch name {
	case "id":
		return r.ID, nil
	case "rating":
		return r.Rating, nil
	case "comment":
		return deref(r.Comment), nil
	case "user":
		return one(x.root.Review().User(ctx, r))
	case "product":
		return one(x.root.Review().Product(ctx, r))
	case "createdAt":
		return domain.FormatTimestamp(r.CreatedAt), nil
	}
	return nil, fmt.Errorf("unknown field Review.%s", name)
}

func (x *execution) resolveOrder(ctx context.Context, o *domain.Order, name string) (any, error) {
	switch name {
	case "id":
		return o.ID, nil
	case "user":
		return one(x.root.Order().User(ctx, o))
	case "items":
		return many(x.root.Order().Items(ctx, o))
	case "status":
		return string(o.Status), nil
	case "total":
		return o.Total, nil
	case "createdAt":
		return domain.FormatTimestamp(o.CreatedAt), nil
	case "updatedAt":
		return domain.FormatTimestamp(o.UpdatedAt), nil
	}
	return nil, fmt.Errorf("unknown field Order.%s", name)
}

func (x *execution) resolveOrderItem(ctx context.Context, line *domain.OrderLine, name string) (any, error) {
	switch name {
	case "id":
		return line.ID, nil
	case "product":
		return one(x.root.OrderItem().Product(ctx, &line.OrderItem))
	case "quantity":
		return line.Quantity, nil
	case "price":
		return line.Price, nil
	}
	return nil, fmt.Errorf("unknown field OrderItem.%s", name)
}

// one keeps a nil entity an untyped nil so completion sees null.
func one[T any](v *T, err error) (any, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}

func many[T any](items []*T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

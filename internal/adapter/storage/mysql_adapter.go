package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/port"
)

var _ port.SnapshotRepository = (*MySQLAdapter)(nil)

// schema keeps an auto-increment seq on every table; rows load in seq order
// so collections come back in insertion order. The DSN needs parseTime=true.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(64) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(64) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(64) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		description TEXT NULL,
		price DOUBLE NOT NULL,
		inventory INT NOT NULL,
		category_id VARCHAR(64) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(64) NOT NULL UNIQUE,
		rating INT NOT NULL,
		comment TEXT NULL,
		user_id VARCHAR(64) NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		created_at DATETIME(3) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(64) NOT NULL UNIQUE,
		user_id VARCHAR(64) NOT NULL,
		status VARCHAR(16) NOT NULL,
		total DOUBLE NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(64) NOT NULL,
		order_id VARCHAR(64) NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		quantity INT NOT NULL,
		price DOUBLE NOT NULL,
		INDEX idx_order_items_order (order_id)
	)`,
}

// Child tables first so a partial delete never leaves orphans behind.
var tables = []string{"order_items", "orders", "reviews", "products", "categories", "users"}

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := m.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Save replaces every row in a single transaction.
func (m *MySQLAdapter) Save(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, u := range snap.Users {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, name, email, role, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			u.ID, u.Name, u.Email, u.Role, u.CreatedAt, u.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
	}

	for _, c := range snap.Categories {
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES (?, ?)`, c.ID, c.Name); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}

	for _, p := range snap.Products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, description, price, inventory, category_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, nullString(p.Description), p.Price, p.Inventory, p.CategoryID, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.ID, err)
		}
	}

	for _, r := range snap.Reviews {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (id, rating, comment, user_id, product_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.Rating, nullString(r.Comment), r.UserID, r.ProductID, r.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert review %s: %w", r.ID, err)
		}
	}

	for _, o := range snap.Orders {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, user_id, status, total, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID, o.UserID, o.Status, o.Total, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
		for _, item := range o.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, product_id, quantity, price)
				VALUES (?, ?, ?, ?, ?)`,
				item.ID, o.ID, item.ProductID, item.Quantity, item.Price,
			)
			if err != nil {
				return fmt.Errorf("insert order item %s: %w", item.ID, err)
			}
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) Load(ctx context.Context) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var err error

	if snap.Users, err = m.loadUsers(ctx); err != nil {
		return nil, err
	}
	if snap.Categories, err = m.loadCategories(ctx); err != nil {
		return nil, err
	}
	if snap.Products, err = m.loadProducts(ctx); err != nil {
		return nil, err
	}
	if snap.Reviews, err = m.loadReviews(ctx); err != nil {
		return nil, err
	}
	if snap.Orders, err = m.loadOrders(ctx); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (m *MySQLAdapter) loadUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, email, role, created_at, updated_at
		FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt, u.UpdatedAt = u.CreatedAt.UTC(), u.UpdatedAt.UTC()
		users = append(users, u)
	}
	return users, rows.Err()
}

func (m *MySQLAdapter) loadCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (m *MySQLAdapter) loadProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, description, price, inventory, category_id, created_at, updated_at
		FROM products ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &description, &p.Price, &p.Inventory, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Description = stringPtr(description)
		p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLAdapter) loadReviews(ctx context.Context) ([]domain.Review, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, rating, comment, user_id, product_id, created_at
		FROM reviews ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var r domain.Review
		var comment sql.NullString
		if err := rows.Scan(&r.ID, &r.Rating, &comment, &r.UserID, &r.ProductID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.Comment = stringPtr(comment)
		r.CreatedAt = r.CreatedAt.UTC()
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (m *MySQLAdapter) loadOrders(ctx context.Context) ([]domain.Order, error) {
	items, err := m.loadOrderItems(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT id, user_id, status, total, created_at, updated_at
		FROM orders ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Items = items[o.ID]
		if o.Items == nil {
			o.Items = []domain.OrderItem{}
		}
		o.CreatedAt, o.UpdatedAt = o.CreatedAt.UTC(), o.UpdatedAt.UTC()
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (m *MySQLAdapter) loadOrderItems(ctx context.Context) (map[string][]domain.OrderItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		var orderID string
		if err := rows.Scan(&item.ID, &orderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}
	return items, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

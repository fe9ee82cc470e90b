package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_inventory/internal/domain"
)

const productColumns = `product_id, product_name, description, price, quantity, category, restock_level, restock_quantity`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Quantity,
		&p.Category,
		&p.RestockLevel,
		&p.RestockQuantity,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY product_id`)
}

func (r *Repository) ListProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY product_id`, category)
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	var exists int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE product_id = $1`, p.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check product id: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateKey
	}

	query := `INSERT INTO products (` + productColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, insertErr := r.q.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price.StringFixed(2),
		p.Quantity,
		p.Category,
		p.RestockLevel,
		p.RestockQuantity)
	if insertErr != nil {
		if isDuplicateKey(insertErr) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert product: %w", insertErr)
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return affectedOne(res, ErrProductNotFound)
}

func (r *Repository) DecrementStock(ctx context.Context, id string, n int) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE products SET quantity = quantity - $1 WHERE product_id = $2 AND quantity >= $1`, n, id)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if errAff := affectedOne(res, ErrInsufficientStock); errAff != nil {
		if !errors.Is(errAff, ErrInsufficientStock) {
			return fmt.Errorf("decrement stock: %w", errAff)
		}
		if _, errGet := r.GetProduct(ctx, id); errGet != nil {
			return errGet
		}
		return fmt.Errorf("product %s: %w", id, ErrInsufficientStock)
	}
	return nil
}

func (r *Repository) IncrementStock(ctx context.Context, id string, n int) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE products SET quantity = quantity + $1 WHERE product_id = $2`, n, id)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	return affectedOne(res, ErrProductNotFound)
}

func (r *Repository) ProductCategory(ctx context.Context, productID string) (string, error) {
	var category string
	err := r.q.QueryRowContext(ctx,
		`SELECT category FROM products WHERE product_id = $1`, productID).Scan(&category)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrProductNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query product category: %w", err)
	}
	return category, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/shopspring/decimal"
)

func (r *Repository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT category_name, gst, cgst, sgst FROM categories ORDER BY category_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.Name, &c.GST, &c.CGST, &c.SGST); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

func (r *Repository) GetCategory(ctx context.Context, name string) (*domain.Category, error) {
	c := &domain.Category{}
	err := r.q.QueryRowContext(ctx,
		`SELECT category_name, gst, cgst, sgst FROM categories WHERE category_name = $1`, name).
		Scan(&c.Name, &c.GST, &c.CGST, &c.SGST)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	return c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *domain.Category) error {
	var exists int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE category_name = $1`, c.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateKey
	}

	_, insertErr := r.q.ExecContext(ctx,
		`INSERT INTO categories (category_name, gst, sgst, cgst) VALUES ($1, $2, $3, $4)`,
		c.Name,
		c.GST.StringFixed(2),
		c.SGST.StringFixed(3),
		c.CGST.StringFixed(3))
	if insertErr != nil {
		if isDuplicateKey(insertErr) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert category: %w", insertErr)
	}
	return nil
}

func (r *Repository) CategoryTax(ctx context.Context, name string) (decimal.Decimal, decimal.Decimal, error) {
	c, err := r.GetCategory(ctx, name)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return c.CGST, c.SGST, nil
}

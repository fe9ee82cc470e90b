package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_inventory/internal/domain"
)

const (
	firstOrderID     int64 = 1001
	firstOrderItemID int64 = 1
)

const orderColumns = `order_id, "user", date, total_items, total_amount, payment_status, customer_name, phone_number, address`

func (r *Repository) NextOrderID(ctx context.Context) (int64, error) {
	var maxID int64
	if err := r.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(order_id), 0) FROM orders`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("query max order id: %w", err)
	}
	if maxID == 0 {
		return firstOrderID, nil
	}
	return maxID + 1, nil
}

func (r *Repository) NextOrderItemID(ctx context.Context) (int64, error) {
	var maxID int64
	if err := r.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(order_item_id), 0) FROM order_items`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("query max order item id: %w", err)
	}
	if maxID == 0 {
		return firstOrderItemID, nil
	}
	return maxID + 1, nil
}

func (r *Repository) CreateOrder(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, insertErr := r.q.ExecContext(ctx, query,
		o.ID,
		o.User,
		o.Date.UTC(),
		o.TotalItems,
		o.TotalAmount.StringFixed(2),
		o.PaymentStatus,
		o.CustomerName,
		o.PhoneNumber,
		o.Address)
	if insertErr != nil {
		if isDuplicateKey(insertErr) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

func (r *Repository) CreateOrderItem(ctx context.Context, item *domain.OrderItem) error {
	_, insertErr := r.q.ExecContext(ctx,
		`INSERT INTO order_items (order_item_id, order_id, product_id, product_name, quantity, price, category, cgst, sgst)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.ProductName,
		item.Quantity,
		item.Price.StringFixed(2),
		item.Category,
		item.CGST.StringFixed(3),
		item.SGST.StringFixed(3))
	if insertErr != nil {
		if isDuplicateKey(insertErr) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert order item: %w", insertErr)
	}
	return nil
}

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID,
		&o.User,
		&o.Date,
		&o.TotalItems,
		&o.TotalAmount,
		&o.PaymentStatus,
		&o.CustomerName,
		&o.PhoneNumber,
		&o.Address,
	)
	if err != nil {
		return nil, err
	}
	o.Date = o.Date.UTC()
	return o, nil
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT oi.order_item_id, oi.order_id, oi.product_id, COALESCE(p.product_name, oi.product_name),
		        oi.quantity, oi.price, oi.category, oi.cgst, oi.sgst
		 FROM order_items oi
		 LEFT JOIN products p ON p.product_id = oi.product_id
		 WHERE oi.order_id = $1
		 ORDER BY oi.order_item_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.Price,
			&item.Category,
			&item.CGST,
			&item.SGST,
		); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY order_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

func (r *Repository) ListHistory(ctx context.Context, username string) ([]*domain.HistoryLine, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT o.order_id, o.date, COALESCE(p.product_name, NULLIF(oi.product_name, ''), oi.product_id), oi.quantity, oi.price, o.payment_status
		 FROM orders o
		 JOIN order_items oi ON oi.order_id = o.order_id
		 LEFT JOIN products p ON p.product_id = oi.product_id
		 WHERE o."user" = $1
		 ORDER BY o.order_id DESC, oi.order_item_id`, username)
	if err != nil {
		return nil, fmt.Errorf("query order history: %w", err)
	}
	defer rows.Close()

	var lines []*domain.HistoryLine
	for rows.Next() {
		l := &domain.HistoryLine{}
		if err := rows.Scan(&l.OrderID, &l.Date, &l.ProductName, &l.Quantity, &l.Price, &l.PaymentStatus); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		l.Date = l.Date.UTC()
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderTotal is the slice of an order the dashboard buckets by date.
type OrderTotal struct {
	Date   time.Time
	Amount decimal.Decimal
	Status domain.PaymentStatus
}

func (r *Repository) ListOrderTotals(ctx context.Context) ([]OrderTotal, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT date, total_amount, payment_status FROM orders ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("query order totals: %w", err)
	}
	defer rows.Close()

	var totals []OrderTotal
	for rows.Next() {
		var t OrderTotal
		if err := rows.Scan(&t.Date, &t.Amount, &t.Status); err != nil {
			return nil, fmt.Errorf("scan order total: %w", err)
		}
		t.Date = t.Date.UTC()
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return totals, nil
}

func (r *Repository) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return n, nil
}

func (r *Repository) CountOrders(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM orders`)
}

func (r *Repository) CountProducts(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM products`)
}

func (r *Repository) PaymentStatusCounts(ctx context.Context) (map[domain.PaymentStatus]int, error) {
	counts := map[domain.PaymentStatus]int{
		domain.PaymentStatusPaid:    0,
		domain.PaymentStatusPending: 0,
	}

	rows, err := r.q.QueryContext(ctx, `SELECT payment_status, COUNT(*) FROM orders GROUP BY payment_status`)
	if err != nil {
		return nil, fmt.Errorf("query payment status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.PaymentStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan payment status count: %w", err)
		}
		counts[status] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}

func (r *Repository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders`).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("query total revenue: %w", err)
	}
	return total, nil
}

func (r *Repository) queryPoints(ctx context.Context, query string, args ...any) ([]domain.Point, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chart series: %w", err)
	}
	defer rows.Close()

	points := make([]domain.Point, 0)
	for rows.Next() {
		var p domain.Point
		if err := rows.Scan(&p.Label, &p.Value); err != nil {
			return nil, fmt.Errorf("scan chart point: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return points, nil
}

// UnitsSoldByProduct ranks products by units sold, most sold first unless
// ascending is set. Labels read "name (category)".
func (r *Repository) UnitsSoldByProduct(ctx context.Context, limit int, ascending bool) ([]domain.Point, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	return r.queryPoints(ctx,
		`SELECT p.product_name || ' (' || p.category || ')', SUM(oi.quantity) AS sold
		 FROM order_items oi
		 JOIN products p ON p.product_id = oi.product_id
		 GROUP BY p.product_id, p.product_name, p.category
		 ORDER BY sold `+order+`, p.product_name
		 LIMIT $1`, limit)
}

func (r *Repository) RevenueByProduct(ctx context.Context, limit int) ([]domain.Point, error) {
	return r.queryPoints(ctx,
		`SELECT p.product_name, SUM(oi.quantity * oi.price) AS revenue
		 FROM order_items oi
		 JOIN products p ON p.product_id = oi.product_id
		 GROUP BY p.product_id, p.product_name
		 ORDER BY revenue DESC, p.product_name
		 LIMIT $1`, limit)
}

func (r *Repository) RevenueByCategory(ctx context.Context) ([]domain.Point, error) {
	return r.queryPoints(ctx,
		`SELECT p.category, SUM(oi.quantity * oi.price) AS revenue
		 FROM order_items oi
		 JOIN products p ON p.product_id = oi.product_id
		 GROUP BY p.category
		 ORDER BY revenue DESC, p.category`)
}

func (r *Repository) ProductsPerCategory(ctx context.Context) ([]domain.Point, error) {
	return r.queryPoints(ctx,
		`SELECT category, COUNT(*) FROM products GROUP BY category ORDER BY category`)
}

// SalesByLocation groups order totals by the first ten characters of the
// delivery address.
func (r *Repository) SalesByLocation(ctx context.Context) ([]domain.Point, error) {
	return r.queryPoints(ctx,
		`SELECT SUBSTR(address, 1, 10), SUM(total_amount)
		 FROM orders
		 GROUP BY SUBSTR(address, 1, 10)
		 ORDER BY SUBSTR(address, 1, 10)`)
}

func (r *Repository) QuantityByLocation(ctx context.Context) ([]domain.Point, error) {
	return r.queryPoints(ctx,
		`SELECT SUBSTR(o.address, 1, 10), SUM(oi.quantity)
		 FROM orders o
		 JOIN order_items oi ON oi.order_id = o.order_id
		 GROUP BY SUBSTR(o.address, 1, 10)
		 ORDER BY SUBSTR(o.address, 1, 10)`)
}

package domain

import "github.com/shopspring/decimal"

// Point is one labelled value of a chart series.
type Point struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

type DashboardStats struct {
	OrdersToday     int                   `json:"orders_today"`
	SalesToday      decimal.Decimal       `json:"sales_today"`
	TotalOrders     int                   `json:"total_orders"`
	TotalProducts   int                   `json:"total_products"`
	PaymentStatus   map[PaymentStatus]int `json:"payment_status"`
	MonthlyEarnings []Point               `json:"monthly_earnings"`
}

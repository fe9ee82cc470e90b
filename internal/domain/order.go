package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
)

// PaymentStatusFor maps the pay-now choice made at checkout.
func PaymentStatusFor(payNow bool) PaymentStatus {
	if payNow {
		return PaymentStatusPaid
	}
	return PaymentStatusPending
}

type OrderItem struct {
	ID          int64           `json:"order_item_id"`
	OrderID     int64           `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`

	// Tax rates in force when the order was placed. An empty Category means
	// the item predates the snapshot and the invoice falls back to the
	// product's current category.
	Category string          `json:"category,omitempty"`
	CGST     decimal.Decimal `json:"cgst"`
	SGST     decimal.Decimal `json:"sgst"`
}

// Subtotal is the unit price snapshot times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID            int64           `json:"order_id"`
	User          string          `json:"user"`
	Date          time.Time       `json:"date"`
	TotalItems    int             `json:"total_items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CustomerName  string          `json:"customer_name"`
	PhoneNumber   string          `json:"phone_number"`
	Address       string          `json:"address"`
	Items         []OrderItem     `json:"items,omitempty"`
}

// HistoryLine is one purchased item as listed in a user's order history.
type HistoryLine struct {
	OrderID       int64           `json:"order_id"`
	Date          time.Time       `json:"date"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is captured with every cart line at add time.
type Customer struct {
	Name    string `json:"customer_name"`
	Phone   string `json:"phone_number"`
	Address string `json:"address"`
}

type CartLine struct {
	LineID      int             `json:"line_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Customer    Customer        `json:"customer"`
	AddedAt     time.Time       `json:"added_at"`
}

// Cart is a session-owned list of lines. Its methods never mutate the
// receiver; each returns the next state.
type Cart struct {
	Username   string     `json:"username"`
	Lines      []CartLine `json:"lines"`
	NextLineID int        `json:"next_line_id"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func NewCart(username string) Cart {
	return Cart{Username: username, NextLineID: 1}
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// QuantityOf sums the quantity already held in the cart for a product.
func (c Cart) QuantityOf(productID string) int {
	total := 0
	for _, l := range c.Lines {
		if l.ProductID == productID {
			total += l.Quantity
		}
	}
	return total
}

// TotalQuantity sums quantities over all lines.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// Total is the sum of line subtotals rounded to two places.
func (c Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Subtotal)
	}
	return sum.Round(2)
}

// AddLine appends a line for p. Stock is checked against the product's
// recorded quantity, counting what the cart already holds.
func (c Cart) AddLine(p Product, quantity int, customer Customer, now time.Time) (Cart, error) {
	if quantity <= 0 {
		return c, NewValidationError("quantity", "must be greater than zero")
	}
	if held := c.QuantityOf(p.ID); quantity+held > p.Quantity {
		return c, NewValidationError("quantity",
			fmt.Sprintf("only %d of %s in stock, %d already in cart", p.Quantity, p.Name, held))
	}

	customer = Customer{
		Name:    strings.TrimSpace(customer.Name),
		Phone:   strings.TrimSpace(customer.Phone),
		Address: strings.TrimSpace(customer.Address),
	}
	switch {
	case customer.Name == "":
		return c, NewValidationError("customer_name", "is required")
	case customer.Phone == "":
		return c, NewValidationError("phone_number", "is required")
	case customer.Address == "":
		return c, NewValidationError("address", "is required")
	}

	next := c.clone()
	if next.NextLineID < 1 {
		next.NextLineID = 1
	}
	next.Lines = append(next.Lines, CartLine{
		LineID:      next.NextLineID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Description: p.Description,
		UnitPrice:   p.Price,
		Quantity:    quantity,
		Subtotal:    p.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Customer:    customer,
		AddedAt:     now,
	})
	next.NextLineID++
	next.UpdatedAt = now
	return next, nil
}

// RemoveLine drops the line with lineID once the user has confirmed.
func (c Cart) RemoveLine(lineID int, confirmed bool, now time.Time) (Cart, error) {
	if !confirmed {
		return c, ErrConfirmationRequired
	}
	idx := -1
	for i, l := range c.Lines {
		if l.LineID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return c, ErrLineNotFound
	}

	next := c.clone()
	next.Lines = append(next.Lines[:idx], next.Lines[idx+1:]...)
	next.UpdatedAt = now
	return next, nil
}

// LastCustomer returns the customer of the last line in cart order.
func (c Cart) LastCustomer() Customer {
	if len(c.Lines) == 0 {
		return Customer{}
	}
	return c.Lines[len(c.Lines)-1].Customer
}

func (c Cart) clone() Cart {
	next := c
	next.Lines = make([]CartLine, len(c.Lines))
	copy(next.Lines, c.Lines)
	return next
}

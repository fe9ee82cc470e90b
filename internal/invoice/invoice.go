// Package invoice computes per-line GST splits for an order and renders the
// result as a PDF document.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/repository"
	"github.com/shopspring/decimal"
)

var ErrMissingTaxRate = errors.New("no tax rate for category")

var hundred = decimal.NewFromInt(100)

// TaxLookup resolves the category of a product and the CGST/SGST percentages
// of a category.
type TaxLookup interface {
	ProductCategory(ctx context.Context, productID string) (string, error)
	CategoryTax(ctx context.Context, name string) (cgst, sgst decimal.Decimal, err error)
}

type Line struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Category          string          `json:"category"`
	BasePrice         decimal.Decimal `json:"base_price"`
	Quantity          int             `json:"quantity"`
	CGSTPercent       decimal.Decimal `json:"cgst_percent"`
	SGSTPercent       decimal.Decimal `json:"sgst_percent"`
	CGSTAmount        decimal.Decimal `json:"cgst_amount"`
	SGSTAmount        decimal.Decimal `json:"sgst_amount"`
	FinalPricePerUnit decimal.Decimal `json:"final_price_per_unit"`
	LineTotal         decimal.Decimal `json:"line_total"`
}

type Invoice struct {
	OrderID       int64                `json:"order_id"`
	Date          time.Time            `json:"date"`
	Customer      domain.Customer      `json:"customer"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	Lines         []Line               `json:"lines"`
	TotalCGST     decimal.Decimal      `json:"total_cgst"`
	TotalSGST     decimal.Decimal      `json:"total_sgst"`
	TotalTax      decimal.Decimal      `json:"total_tax"`
	GrandTotal    decimal.Decimal      `json:"grand_total"`
}

// Generate builds the invoice of order from its items. Item prices are the
// base prices captured at checkout; tax is added on top per unit. Items
// carrying a tax snapshot are priced with it, others with the current rates
// of their product's category.
func Generate(ctx context.Context, taxes TaxLookup, order *domain.Order, items []domain.OrderItem) (*Invoice, error) {
	inv := &Invoice{
		OrderID: order.ID,
		Date:    order.Date,
		Customer: domain.Customer{
			Name:    order.CustomerName,
			Phone:   order.PhoneNumber,
			Address: order.Address,
		},
		PaymentStatus: order.PaymentStatus,
		Lines:         make([]Line, 0, len(items)),
	}

	for _, item := range items {
		if item.Category == "" {
			if err := Stamp(ctx, taxes, &item); err != nil {
				return nil, err
			}
		}

		line := computeLine(item)
		qty := decimal.NewFromInt(int64(item.Quantity))

		inv.TotalCGST = inv.TotalCGST.Add(line.CGSTAmount.Mul(qty))
		inv.TotalSGST = inv.TotalSGST.Add(line.SGSTAmount.Mul(qty))
		inv.GrandTotal = inv.GrandTotal.Add(line.LineTotal)
		inv.Lines = append(inv.Lines, line)
	}
	inv.TotalTax = inv.TotalCGST.Add(inv.TotalSGST)

	return inv, nil
}

// Stamp copies the product's current category and its CGST/SGST rates onto
// item.
func Stamp(ctx context.Context, taxes TaxLookup, item *domain.OrderItem) error {
	category, err := taxes.ProductCategory(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("category of product %s: %w", item.ProductID, err)
	}

	cgst, sgst, err := taxes.CategoryTax(ctx, category)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return fmt.Errorf("%w %q", ErrMissingTaxRate, category)
	}
	if err != nil {
		return fmt.Errorf("tax rate of category %s: %w", category, err)
	}

	item.Category = category
	item.CGST = cgst
	item.SGST = sgst
	return nil
}

func computeLine(item domain.OrderItem) Line {
	cgstAmount := item.Price.Mul(item.CGST).Div(hundred)
	sgstAmount := item.Price.Mul(item.SGST).Div(hundred)
	final := item.Price.Add(cgstAmount).Add(sgstAmount)

	return Line{
		ProductID:         item.ProductID,
		ProductName:       item.ProductName,
		Category:          item.Category,
		BasePrice:         item.Price,
		Quantity:          item.Quantity,
		CGSTPercent:       item.CGST,
		SGSTPercent:       item.SGST,
		CGSTAmount:        cgstAmount,
		SGSTAmount:        sgstAmount,
		FinalPricePerUnit: final,
		LineTotal:         final.Mul(decimal.NewFromInt(int64(item.Quantity))),
	}
}

// FileName is the deterministic document name of an order's invoice.
func FileName(orderID int64) string {
	return fmt.Sprintf("Invoice_%d.pdf", orderID)
}

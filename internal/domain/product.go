package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID              string          `json:"product_id"`
	Name            string          `json:"product_name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	Category        string          `json:"category"`
	RestockLevel    int             `json:"restock_level"`
	RestockQuantity int             `json:"restock_quantity"`
}

// NeedsRestock reports whether the product is at or below its threshold and
// has a positive replenishment amount configured.
func (p Product) NeedsRestock() bool {
	return p.Quantity <= p.RestockLevel && p.RestockQuantity > 0
}

// Category carries the combined GST rate and its two halves.
type Category struct {
	Name string          `json:"category_name"`
	GST  decimal.Decimal `json:"gst"`
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
}

var two = decimal.NewFromInt(2)

// NewCategory splits gst evenly into CGST and SGST.
func NewCategory(name string, gst decimal.Decimal) Category {
	half := gst.Div(two)
	return Category{Name: name, GST: gst, CGST: half, SGST: half}
}

// RestockNotice describes one automatic replenishment.
type RestockNotice struct {
	ProductID        string `json:"product_id"`
	ProductName      string `json:"product_name"`
	PreviousQuantity int    `json:"previous_quantity"`
	Restocked        int    `json:"restocked"`
	NewQuantity      int    `json:"new_quantity"`
	RestockLevel     int    `json:"restock_level"`
}

package invoice

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

type Renderer interface {
	Render(w io.Writer, inv *Invoice) error
}

// PDFRenderer lays an invoice out on a single A4 page.
type PDFRenderer struct {
	BusinessName string
	GSTIN        string
}

func NewPDFRenderer(businessName, gstin string) *PDFRenderer {
	return &PDFRenderer{BusinessName: businessName, GSTIN: gstin}
}

var columnWidths = []float64{60, 25, 18, 25, 25, 37}

func (r *PDFRenderer) Render(w io.Writer, inv *Invoice) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "INVENTORY MANAGEMENT SYSTEM", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, r.BusinessName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "GSTIN: "+r.GSTIN, "", 1, "L", false, 0, "")
	pdf.Ln(3)
	pdf.CellFormat(0, 5, "Date: "+inv.Date.Format("02-01-2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Invoice No: %d", inv.OrderID), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.CellFormat(0, 5, "Customer Name: "+inv.Customer.Name, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Phone Number: "+inv.Customer.Phone, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Address: "+inv.Customer.Address, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFillColor(211, 211, 211)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Product Name", "Base Price", "Quantity", "CGST", "SGST", "Final Price"} {
		pdf.CellFormat(columnWidths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range inv.Lines {
		cells := []string{
			l.ProductName,
			rupees(l.BasePrice),
			fmt.Sprintf("%d", l.Quantity),
			rupees(l.CGSTAmount),
			rupees(l.SGSTAmount),
			rupees(l.FinalPricePerUnit),
		}
		for i, c := range cells {
			pdf.CellFormat(columnWidths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(columnWidths[0]+columnWidths[1]+columnWidths[2], 8, "Total Tax: "+rupees(inv.TotalTax), "1", 0, "L", true, 0, "")
	pdf.CellFormat(columnWidths[3], 8, rupees(inv.TotalCGST), "1", 0, "L", true, 0, "")
	pdf.CellFormat(columnWidths[4], 8, rupees(inv.TotalSGST), "1", 0, "L", true, 0, "")
	pdf.CellFormat(columnWidths[5], 8, rupees(inv.GrandTotal), "1", 1, "L", true, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Payment status: "+string(inv.PaymentStatus), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(0, 5, "Thank you for your business!", "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write invoice pdf: %w", err)
	}
	return nil
}

func rupees(d decimal.Decimal) string {
	return d.StringFixed(2) + " Rs"
}

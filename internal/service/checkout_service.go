package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/fjod/go_inventory/internal/cartstore"
	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/invoice"
	"github.com/fjod/go_inventory/internal/repository"
)

// InvoiceWriter persists a rendered invoice and returns where it went.
type InvoiceWriter interface {
	Save(inv *invoice.Invoice) (string, error)
}

type Receipt struct {
	Order       *domain.Order    `json:"order"`
	Invoice     *invoice.Invoice `json:"invoice"`
	Restock     *RestockReport   `json:"restock"`
	InvoicePath string           `json:"invoice_path,omitempty"`
}

type CheckoutService struct {
	repo     repository.Store
	carts    cartstore.Store
	restock  *RestockEvaluator
	invoices InvoiceWriter
	now      func() time.Time
}

func NewCheckoutService(repo repository.Store, carts cartstore.Store, restock *RestockEvaluator, invoices InvoiceWriter) *CheckoutService {
	return &CheckoutService{
		repo:     repo,
		carts:    carts,
		restock:  restock,
		invoices: invoices,
		now:      time.Now,
	}
}

// Checkout turns the user's cart into an order. Order, items, stock
// decrements, restocking, the invoice computation and outbox events commit
// together or not at all. The invoice document is written after commit.
func (s *CheckoutService) Checkout(ctx context.Context, username string, payNow bool) (*Receipt, error) {
	cart, err := s.carts.Get(ctx, username)
	if err != nil && !errors.Is(err, cartstore.ErrCartNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	receipt := &Receipt{}
	err = s.repo.WithTx(ctx, func(tx repository.Store) error {
		order, errPlace := s.placeOrder(ctx, tx, cart, payNow)
		if errPlace != nil {
			return errPlace
		}
		receipt.Order = order

		report, errRestock := s.restock.Evaluate(ctx, tx)
		if errRestock != nil {
			return errRestock
		}
		receipt.Restock = report

		inv, errInv := invoice.Generate(ctx, tx, order, order.Items)
		if errInv != nil {
			return errInv
		}
		receipt.Invoice = inv

		if errEvt := recordOrderPlaced(ctx, tx, order); errEvt != nil {
			return errEvt
		}
		return recordRestockEvents(ctx, tx, report.Notices)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("order %d placed by %s: %d items, total %s, %s",
		receipt.Order.ID, username, receipt.Order.TotalItems, receipt.Order.TotalAmount.StringFixed(2), receipt.Order.PaymentStatus)

	if s.invoices != nil {
		path, errSave := s.invoices.Save(receipt.Invoice)
		if errSave != nil {
			log.Printf("invoice %d not written: %v", receipt.Order.ID, errSave)
		} else {
			receipt.InvoicePath = path
		}
	}

	if errClear := s.carts.Delete(ctx, username); errClear != nil {
		log.Printf("cart delete error after order %d: %v", receipt.Order.ID, errClear)
	}
	return receipt, nil
}

func (s *CheckoutService) placeOrder(ctx context.Context, tx repository.Store, cart *domain.Cart, payNow bool) (*domain.Order, error) {
	orderID, err := tx.NextOrderID(ctx)
	if err != nil {
		return nil, err
	}
	itemID, err := tx.NextOrderItemID(ctx)
	if err != nil {
		return nil, err
	}

	customer := cart.LastCustomer()
	order := &domain.Order{
		ID:            orderID,
		User:          cart.Username,
		Date:          s.now().UTC(),
		TotalItems:    cart.TotalQuantity(),
		TotalAmount:   cart.Total(),
		PaymentStatus: domain.PaymentStatusFor(payNow),
		CustomerName:  customer.Name,
		PhoneNumber:   customer.Phone,
		Address:       customer.Address,
	}
	if err := tx.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	for _, line := range cart.Lines {
		if err := tx.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}

		item := domain.OrderItem{
			ID:          itemID,
			OrderID:     orderID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.UnitPrice,
		}
		if err := invoice.Stamp(ctx, tx, &item); err != nil {
			return nil, err
		}
		if err := tx.CreateOrderItem(ctx, &item); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
		itemID++
	}
	return order, nil
}

func recordOrderPlaced(ctx context.Context, store repository.OutboxStore, order *domain.Order) error {
	payload := map[string]interface{}{
		"order_id":       order.ID,
		"user":           order.User,
		"items":          order.Items,
		"total_items":    order.TotalItems,
		"total_amount":   order.TotalAmount,
		"payment_status": order.PaymentStatus,
		"placed_at":      order.Date,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal order payload: %w", err)
	}
	return store.AddOutboxEvent(ctx, strconv.FormatInt(order.ID, 10), repository.EventOrderPlaced, payloadJSON)
}

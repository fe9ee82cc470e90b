package service

import (
	"context"
	"fmt"
	"io"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/invoice"
	"github.com/fjod/go_inventory/internal/repository"
)

// OrderService serves the orders and history sections.
type OrderService struct {
	repo     repository.Store
	renderer invoice.Renderer
}

func NewOrderService(repo repository.Store, renderer invoice.Renderer) *OrderService {
	return &OrderService{repo: repo, renderer: renderer}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.ListOrders(ctx)
}

// GetOrder returns an order with its items. Non-admin users only see their
// own orders; anything else reads as not found.
func (s *OrderService) GetOrder(ctx context.Context, id int64, viewer *domain.User) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && order.User != viewer.Username {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) History(ctx context.Context, username string) ([]*domain.HistoryLine, error) {
	return s.repo.ListHistory(ctx, username)
}

// WriteInvoice regenerates the invoice of an order and renders it to w.
func (s *OrderService) WriteInvoice(ctx context.Context, w io.Writer, id int64, viewer *domain.User) error {
	order, err := s.GetOrder(ctx, id, viewer)
	if err != nil {
		return err
	}

	inv, err := invoice.Generate(ctx, s.repo, order, order.Items)
	if err != nil {
		return err
	}
	if err := s.renderer.Render(w, inv); err != nil {
		return fmt.Errorf("render invoice %d: %w", id, err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fjod/go_inventory/internal/cartstore"
	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/repository"
)

// ShopService applies cart commands to the session cart of a user. Each
// command loads the cart, computes the next state and saves it back.
type ShopService struct {
	products repository.ProductStore
	carts    cartstore.Store
	now      func() time.Time
}

func NewShopService(products repository.ProductStore, carts cartstore.Store) *ShopService {
	return &ShopService{products: products, carts: carts, now: time.Now}
}

// GetCart returns the user's cart; a user without one gets an empty cart.
func (s *ShopService) GetCart(ctx context.Context, username string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, username)
	if errors.Is(err, cartstore.ErrCartNotFound) {
		empty := domain.NewCart(username)
		return &empty, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

func (s *ShopService) AddToCart(ctx context.Context, username, productID string, quantity int, customer domain.Customer) (*domain.Cart, error) {
	product, err := s.products.GetProduct(ctx, strings.TrimSpace(productID))
	if err != nil {
		return nil, err
	}

	cart, err := s.GetCart(ctx, username)
	if err != nil {
		return nil, err
	}

	next, err := cart.AddLine(*product, quantity, customer, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, &next); err != nil {
		log.Printf("cart save error: %v", err)
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return &next, nil
}

// RemoveFromCart drops a line. Stock is only decremented at checkout, so
// removal touches nothing but the cart.
func (s *ShopService) RemoveFromCart(ctx context.Context, username string, lineID int, confirmed bool) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, username)
	if err != nil {
		return nil, err
	}

	next, err := cart.RemoveLine(lineID, confirmed, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, &next); err != nil {
		log.Printf("cart save error: %v", err)
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return &next, nil
}

func (s *ShopService) ClearCart(ctx context.Context, username string) error {
	if err := s.carts.Delete(ctx, username); err != nil {
		log.Printf("cart delete error: %v", err)
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

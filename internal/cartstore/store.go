package cartstore

import (
	"context"
	"errors"

	"github.com/fjod/go_inventory/internal/domain"
)

// Store keeps the session cart of each logged-in user.
type Store interface {
	Get(ctx context.Context, username string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, username string) error
}

var ErrCartNotFound = errors.New("cart not found")

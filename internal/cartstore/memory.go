package cartstore

import (
	"context"
	"sync"

	"github.com/fjod/go_inventory/internal/domain"
)

// MemoryStore implements Store with in-process storage. Carts are lost on
// restart.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart // username -> cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]domain.Cart)}
}

func (s *MemoryStore) Get(_ context.Context, username string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[username]
	if !ok {
		return nil, ErrCartNotFound
	}
	// copy so callers cannot alias stored lines
	lines := make([]domain.CartLine, len(cart.Lines))
	copy(lines, cart.Lines)
	cart.Lines = lines
	return &cart, nil
}

func (s *MemoryStore) Save(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cart
	stored.Lines = make([]domain.CartLine, len(cart.Lines))
	copy(stored.Lines, cart.Lines)
	s.carts[cart.Username] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, username)
	return nil
}

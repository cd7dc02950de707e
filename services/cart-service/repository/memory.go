package repository

import (
	"context"
	"sync"

	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/models"
)

// MemoryCartStore is an in-process CartStore for local runs and tests.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]models.Cart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]models.Cart)}
}

func (s *MemoryCartStore) GetCart(_ context.Context, userName string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[userName]
	if !ok {
		return nil, nil
	}
	copied := cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (s *MemoryCartStore) ListCarts(_ context.Context) ([]models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	carts := make([]models.Cart, 0, len(s.carts))
	for _, cart := range s.carts {
		carts = append(carts, cart)
	}
	return carts, nil
}

func (s *MemoryCartStore) SaveCart(_ context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *cart
	stored.Items = append([]models.CartItem(nil), cart.Items...)
	s.carts[cart.UserName] = stored
	return nil
}

func (s *MemoryCartStore) DeleteCart(_ context.Context, userName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userName)
	return nil
}

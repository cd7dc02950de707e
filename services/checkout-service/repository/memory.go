package repository

import (
	"context"
	"sync"

	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/models"
)

type orderKey struct {
	userName  string
	orderDate string
}

// MemoryOrderStore is an in-process OrderStore for local runs and tests.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[orderKey]models.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[orderKey]models.Order)}
}

func (s *MemoryOrderStore) SaveOrder(_ context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[orderKey{order.UserName, order.OrderDate}] = order
	return nil
}

func (s *MemoryOrderStore) GetOrder(_ context.Context, userName, orderDate string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderKey{userName, orderDate}]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (s *MemoryOrderStore) ListOrders(_ context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

package idempotency

import (
	"context"
	"sync"
)

// MemoryGuard is an in-process Guard for local runs and tests.
type MemoryGuard struct {
	mu   sync.RWMutex
	seen map[string]string
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{seen: make(map[string]string)}
}

func (g *MemoryGuard) Seen(_ context.Context, key string) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.seen[key], nil
}

func (g *MemoryGuard) Record(_ context.Context, key, orderDate string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen[key] = orderDate
	return nil
}

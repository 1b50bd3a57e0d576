package memory

import (
	"context"
	"strings"
	"sync"

	cartdom "goaltickets/internal/domain/cart"
)

// CartRepositoryMem keeps carts in process memory.
// Default backend for local development and tests; contents are lost on
// restart, which matches the storefront's original in-memory store.
type CartRepositoryMem struct {
	mu    sync.RWMutex
	carts map[string]*cartdom.Cart
}

func NewCartRepositoryMem() *CartRepositoryMem {
	return &CartRepositoryMem{carts: map[string]*cartdom.Cart{}}
}

func (r *CartRepositoryMem) GetBySessionID(_ context.Context, sessionID string) (*cartdom.Cart, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return nil, cartdom.ErrInvalidCart
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[sid]
	if !ok {
		return nil, nil
	}
	return clone(c), nil
}

func (r *CartRepositoryMem) Upsert(_ context.Context, c *cartdom.Cart) error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return cartdom.ErrInvalidCart
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[c.ID] = clone(c)
	return nil
}

func (r *CartRepositoryMem) DeleteBySessionID(_ context.Context, sessionID string) error {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return cartdom.ErrInvalidCart
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, sid)
	return nil
}

// Len reports the number of stored carts (test helper).
func (r *CartRepositoryMem) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}

// clone keeps callers from mutating stored state through the returned pointer.
func clone(c *cartdom.Cart) *cartdom.Cart {
	cp := *c
	cp.Items = c.CloneItems()
	return &cp
}

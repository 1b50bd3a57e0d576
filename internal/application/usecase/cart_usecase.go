package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	cartdom "goaltickets/internal/domain/cart"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CartUsecase coordinates cart operations against the store.
//
// Missing sessions are never errors: every operation lazily materializes an
// empty cart, mutates it, and writes it back whole (last-write-wins at the
// document level, no cross-operation transaction).
type CartUsecase struct {
	repo   cartdom.Repository
	policy cartdom.MergePolicy
	clock  Clock
}

func NewCartUsecase(repo cartdom.Repository, policy cartdom.MergePolicy) *CartUsecase {
	return &CartUsecase{
		repo:   repo,
		policy: policy,
		clock:  systemClock{},
	}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(repo cartdom.Repository, policy cartdom.MergePolicy, clock Clock) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartUsecase{repo: repo, policy: policy, clock: clock}
}

// Get returns the cart items for sessionID.
// An absent cart reads as empty; nothing is persisted by a read.
func (uc *CartUsecase) Get(ctx context.Context, sessionID string) ([]cartdom.Item, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.repo.GetBySessionID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return []cartdom.Item{}, nil
	}
	return c.CloneItems(), nil
}

// AddItem merges-or-appends item per the configured policy and returns the
// full updated item list.
func (uc *CartUsecase) AddItem(ctx context.Context, sessionID string, item cartdom.Item) ([]cartdom.Item, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" || strings.TrimSpace(item.ID) == "" {
		return nil, ErrCartInvalidArgument
	}

	now := uc.clock.Now()

	c, err := uc.loadOrNew(ctx, sid, now)
	if err != nil {
		return nil, err
	}
	if err := c.Add(item, uc.policy, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c.CloneItems(), nil
}

// SetItemQuantity sets quantity for itemID; qty <= 0 removes the line.
// Unknown itemID is a successful no-op.
func (uc *CartUsecase) SetItemQuantity(ctx context.Context, sessionID, itemID string, qty int) ([]cartdom.Item, error) {
	sid := strings.TrimSpace(sessionID)
	iid := strings.TrimSpace(itemID)
	if sid == "" || iid == "" {
		return nil, ErrCartInvalidArgument
	}

	now := uc.clock.Now()

	c, err := uc.loadOrNew(ctx, sid, now)
	if err != nil {
		return nil, err
	}
	if err := c.SetQuantity(iid, qty, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c.CloneItems(), nil
}

// RemoveItem filters out itemID. Idempotent.
func (uc *CartUsecase) RemoveItem(ctx context.Context, sessionID, itemID string) ([]cartdom.Item, error) {
	return uc.SetItemQuantity(ctx, sessionID, itemID, 0)
}

// Clear deletes the cart document for sessionID.
func (uc *CartUsecase) Clear(ctx context.Context, sessionID string) error {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return ErrCartInvalidArgument
	}
	return uc.repo.DeleteBySessionID(ctx, sid)
}

// Total computes the payable amount for sessionID's cart.
func (uc *CartUsecase) Total(ctx context.Context, sessionID string) (float64, error) {
	items, err := uc.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum, nil
}

func (uc *CartUsecase) loadOrNew(ctx context.Context, sid string, now time.Time) (*cartdom.Cart, error) {
	c, err := uc.repo.GetBySessionID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	return cartdom.New(sid, now)
}

package state

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"goaltickets/internal/client/api"
	"goaltickets/internal/client/session"
	cartdom "goaltickets/internal/domain/cart"
	sessiondom "goaltickets/internal/domain/session"
)

// View is the thin presentation adapter the cart drives. The cart owns no
// rendering of its own; event binding strategies stay out of the core.
type View interface {
	// RenderItems shows the non-empty cart with its total.
	RenderItems(items []cartdom.Item, total float64)
	// RenderEmpty shows the empty-cart message and hides the footer/total.
	RenderEmpty()
	// UpdateCount refreshes the visible item-count badge.
	UpdateCount(count int)
	// OpenPanel opens the cart panel (after a successful add).
	OpenPanel()
}

// SnapshotSource hands back a cart copy saved before a payment redirect.
// A non-empty snapshot is replayed into the store when a refresh finds the
// server cart empty, then consumed.
type SnapshotSource interface {
	RestoreSnapshot() ([]cartdom.Item, error)
	DropSnapshot() error
}

// NopView is used when no UI is attached (tests, headless tooling).
type NopView struct{}

func (NopView) RenderItems([]cartdom.Item, float64) {}
func (NopView) RenderEmpty()                        {}
func (NopView) UpdateCount(int)                     {}
func (NopView) OpenPanel()                          {}

// CartState is the embedder-side mirror of one session's cart.
//
// The server response is authoritative: every mutation replaces the local
// item list with what came back. Concurrent mutations are not queued; the
// last response received wins (accepted, see the store's write model).
//
// Construct one instance and inject it; there is no package-level singleton.
type CartState struct {
	api      *api.Client
	sessions *session.Provider
	view     View

	mu          sync.Mutex
	items       []cartdom.Item
	initialized bool

	snapshots SnapshotSource

	now func() time.Time
}

func New(apiClient *api.Client, sessions *session.Provider, view View) *CartState {
	if view == nil {
		view = NopView{}
	}
	return &CartState{
		api:      apiClient,
		sessions: sessions,
		view:     view,
		items:    []cartdom.Item{},
		now:      time.Now,
	}
}

// SetSnapshotSource attaches the pre-payment cart backup (checkout.Handoff).
func (s *CartState) SetSnapshotSource(src SnapshotSource) {
	s.mu.Lock()
	s.snapshots = src
	s.mu.Unlock()
}

// Init resolves the session identifier, fetches the cart and renders.
// Re-entrant: a second call only re-fetches and re-renders, it does not
// re-register anything.
func (s *CartState) Init(ctx context.Context) error {
	s.mu.Lock()
	already := s.initialized
	s.initialized = true
	s.mu.Unlock()

	if already {
		return s.Refresh(ctx)
	}

	s.sessions.GetOrCreate()
	return s.Refresh(ctx)
}

// Refresh re-fetches from the store and re-renders. Transport failures leave
// the local mirror untouched.
func (s *CartState) Refresh(ctx context.Context) error {
	sid := s.sessions.GetOrCreate()

	items, err := s.api.GetCart(ctx, sid)
	if err != nil {
		log.Printf("[cart_state] refresh failed session=%s err=%v (keeping local state)", sid, err)
		return err
	}

	if len(items) == 0 {
		if restored, ok := s.restoreFromSnapshot(ctx, sid); ok {
			items = restored
		}
	}

	s.replace(items)
	return nil
}

// restoreFromSnapshot replays a pre-payment cart backup into the store after
// an empty-cart load (failed or abandoned payment). The snapshot is consumed.
func (s *CartState) restoreFromSnapshot(ctx context.Context, sid string) ([]cartdom.Item, bool) {
	s.mu.Lock()
	src := s.snapshots
	s.mu.Unlock()
	if src == nil {
		return nil, false
	}

	saved, err := src.RestoreSnapshot()
	if err != nil || len(saved) == 0 {
		return nil, false
	}

	log.Printf("[cart_state] restoring %d item(s) from pre-payment snapshot session=%s", len(saved), sid)

	var items []cartdom.Item
	for _, it := range saved {
		res, err := s.api.AddItem(ctx, sid, it)
		if err != nil {
			log.Printf("[cart_state] snapshot restore add failed item=%s err=%v", it.ID, err)
			continue
		}
		items = res
	}
	if items == nil {
		return nil, false
	}
	_ = src.DropSnapshot()
	return items, true
}

// AddToCart posts item and mirrors the server's cart. The bool lets UI
// callers drive button feedback without duplicating cart logic.
// A missing item id is generated here (item_<ts>_<rand>).
func (s *CartState) AddToCart(ctx context.Context, item cartdom.Item) (bool, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = sessiondom.NewItemID(s.now())
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	sid := s.sessions.GetOrCreate()
	items, err := s.api.AddItem(ctx, sid, item)
	if err != nil {
		log.Printf("[cart_state] add failed session=%s err=%v", sid, err)
		return false, err
	}

	s.replace(items)
	s.view.OpenPanel()
	return true, nil
}

// UpdateQuantity sets an absolute quantity for itemID.
func (s *CartState) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	sid := s.sessions.GetOrCreate()
	items, err := s.api.UpdateQuantity(ctx, sid, itemID, quantity)
	if err != nil {
		log.Printf("[cart_state] update failed session=%s item=%s err=%v", sid, itemID, err)
		return err
	}
	s.replace(items)
	return nil
}

// IncrementQuantity bumps itemID by one.
func (s *CartState) IncrementQuantity(ctx context.Context, itemID string) error {
	if it, ok := s.item(itemID); ok {
		return s.UpdateQuantity(ctx, itemID, it.Quantity+1)
	}
	return nil
}

// DecrementQuantity lowers itemID by one, floored at 1 (the minus control
// never removes; removal is explicit).
func (s *CartState) DecrementQuantity(ctx context.Context, itemID string) error {
	if it, ok := s.item(itemID); ok && it.Quantity > 1 {
		return s.UpdateQuantity(ctx, itemID, it.Quantity-1)
	}
	return nil
}

// RemoveFromCart filters out itemID.
func (s *CartState) RemoveFromCart(ctx context.Context, itemID string) error {
	sid := s.sessions.GetOrCreate()
	items, err := s.api.RemoveItem(ctx, sid, itemID)
	if err != nil {
		log.Printf("[cart_state] remove failed session=%s item=%s err=%v", sid, itemID, err)
		return err
	}
	s.replace(items)
	return nil
}

// ClearCart empties the cart.
func (s *CartState) ClearCart(ctx context.Context) error {
	sid := s.sessions.GetOrCreate()
	items, err := s.api.ClearCart(ctx, sid)
	if err != nil {
		log.Printf("[cart_state] clear failed session=%s err=%v", sid, err)
		return err
	}
	s.replace(items)
	return nil
}

// Total is the sum of price*quantity over the mirror. Pure.
func (s *CartState) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, it := range s.items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// Count is the unit count across lines (badge value).
func (s *CartState) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Items returns a snapshot of the mirror.
func (s *CartState) Items() []cartdom.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cartdom.Item, len(s.items))
	copy(out, s.items)
	return out
}

// SessionID exposes the current session identifier (checkout embeds it).
func (s *CartState) SessionID() string {
	return s.sessions.GetOrCreate()
}

// AdoptSession switches to a session id carried back by the payment
// redirect. The next Refresh addresses the adopted cart.
func (s *CartState) AdoptSession(id string) {
	s.sessions.Adopt(id)
}

// Initialized reports whether Init completed at least once.
func (s *CartState) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *CartState) replace(items []cartdom.Item) {
	if items == nil {
		items = []cartdom.Item{}
	}

	s.mu.Lock()
	s.items = items
	total := 0.0
	count := 0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
		count += it.Quantity
	}
	s.mu.Unlock()

	if len(items) == 0 {
		s.view.RenderEmpty()
	} else {
		s.view.RenderItems(items, total)
	}
	s.view.UpdateCount(count)
}

func (s *CartState) item(itemID string) (cartdom.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return cartdom.Item{}, false
}

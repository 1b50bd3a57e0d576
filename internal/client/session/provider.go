package session

import (
	"log"
	"strings"
	"sync"
	"time"

	"goaltickets/internal/client/storage"
	sessiondom "goaltickets/internal/domain/session"
)

// StorageKey is the key the session id lives under in every storage layer.
const StorageKey = "cart_session_id"

// Provider establishes and persists the per-browser session identifier.
//
// Reads go through the layered store in priority order; a fresh identifier is
// written back to all layers for redundancy. Storage unavailability degrades
// to a per-process identifier, never an error.
type Provider struct {
	store storage.Store

	mu sync.Mutex
	id string

	now func() time.Time
}

func NewProvider(store storage.Store) *Provider {
	if store == nil {
		store = storage.NewMemStore()
	}
	return &Provider{store: store, now: time.Now}
}

// NewProviderWithClock is useful for tests.
func NewProviderWithClock(store storage.Store, now func() time.Time) *Provider {
	p := NewProvider(store)
	if now != nil {
		p.now = now
	}
	return p
}

// GetOrCreate returns the current session id, generating and persisting one
// when none exists yet.
func (p *Provider) GetOrCreate() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.id != "" {
		return p.id
	}

	if v, ok := p.store.Get(StorageKey); ok && strings.TrimSpace(v) != "" {
		p.id = strings.TrimSpace(v)
		return p.id
	}

	p.id = sessiondom.NewID(p.now())
	if err := p.store.Set(StorageKey, p.id); err != nil {
		log.Printf("[session] WARN: persist failed: %v (id lives for this process only)", err)
	}
	return p.id
}

// Adopt switches to candidate (a session_id carried back by the payment
// redirect). A differing candidate overwrites every storage layer
// immediately so subsequent store calls address the right cart.
func (p *Provider) Adopt(candidate string) bool {
	cand := strings.TrimSpace(candidate)
	if cand == "" {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if cand == p.id {
		return false
	}

	log.Printf("[session] adopting session id from payment return")
	p.id = cand
	if err := p.store.Set(StorageKey, cand); err != nil {
		log.Printf("[session] WARN: persist adopted id failed: %v", err)
	}
	return true
}

// Current returns the in-memory id without creating one.
func (p *Provider) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id
}

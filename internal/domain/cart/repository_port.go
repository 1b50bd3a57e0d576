package cart

import "context"

// Repository is a persistence port for Cart.
//
// Storage recommendation (Firestore):
// - collection: carts
// - docId: sessionId
// - fields: items, createdAt, updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on the "expiresAt" field.
// - expiresAt is refreshed on each cart mutation (handled by domain via touch()).
//
// Not-found policy: GetBySessionID returns (nil, nil) and the application
// layer treats nil as "empty cart". Missing sessions are never an error.
type Repository interface {
	GetBySessionID(ctx context.Context, sessionID string) (*Cart, error)

	// Upsert saves the cart (create or update). Whole-document write,
	// last-write-wins; no cross-operation transaction.
	Upsert(ctx context.Context, c *Cart) error

	// DeleteBySessionID removes the cart document. Idempotent.
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

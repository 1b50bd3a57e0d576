package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "goaltickets/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: sessionId (docId is the source of truth)
// - fields: items, createdAt, updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on "expiresAt".
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// GetBySessionID returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) GetBySessionID(ctx context.Context, sessionID string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return nil, errors.New("cart_repository_fs: sessionID is empty")
	}

	snap, err := r.col().Doc(sid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	// Parse snap.Data() by hand instead of DataTo: older docs stored items
	// with partial fields, and a type mismatch there must not turn a cart
	// read into a 500.
	doc, err := cartDocFromSnapshot(snap)
	if err != nil {
		return nil, err
	}

	d := doc.toDomain()
	// docId is the source of truth even when the doc body lacks an id field.
	d.ID = sid
	return d, nil
}

// Upsert saves the cart by docId=cart.ID (= sessionId). Full-document
// overwrite, simple and predictable; concurrent writers race last-write-wins.
func (r *CartRepositoryFS) Upsert(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}

	sid := strings.TrimSpace(c.ID)
	if sid == "" {
		return errors.New("cart_repository_fs: Upsert requires cart.ID (= sessionId) as docId")
	}

	_, err := r.col().Doc(sid).Set(ctx, cartDocFromDomain(c))
	return err
}

func (r *CartRepositoryFS) DeleteBySessionID(ctx context.Context, sessionID string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return errors.New("cart_repository_fs: sessionID is empty")
	}

	_, err := r.col().Doc(sid).Delete(ctx)
	return err
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartDoc struct {
	// Items: ordered list of line items.
	// NOTE: domain struct is not used as the firestore DTO directly
	// (backward compatibility and schema flexibility).
	Items []cartItemDoc `firestore:"items"`

	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
	ExpiresAt time.Time `firestore:"expiresAt"`
}

type cartItemDoc struct {
	ID       string  `firestore:"id"`
	Title    string  `firestore:"title"`
	Category string  `firestore:"category"`
	Price    float64 `firestore:"price"`
	Quantity int     `firestore:"quantity"`
	Image    string  `firestore:"image"`
}

// cartDocFromSnapshot parses Firestore document data with backward
// compatibility. Entries without an id or with quantity <= 0 are dropped
// rather than failing the whole read.
func cartDocFromSnapshot(snap *firestore.DocumentSnapshot) (cartDoc, error) {
	if snap == nil {
		return cartDoc{}, errors.New("cart_repository_fs: snapshot is nil")
	}

	raw := snap.Data()
	if raw == nil {
		return cartDoc{Items: []cartItemDoc{}}, nil
	}

	out := cartDoc{Items: []cartItemDoc{}}

	if t, ok := raw["createdAt"]; ok {
		if tt, ok2 := asTime(t); ok2 {
			out.CreatedAt = tt
		}
	}
	if t, ok := raw["updatedAt"]; ok {
		if tt, ok2 := asTime(t); ok2 {
			out.UpdatedAt = tt
		}
	}
	if t, ok := raw["expiresAt"]; ok {
		if tt, ok2 := asTime(t); ok2 {
			out.ExpiresAt = tt
		}
	}

	itemsAny := raw["items"]
	list, ok := itemsAny.([]any)
	if !ok || list == nil {
		return out, nil
	}

	for _, v := range list {
		mv, ok := v.(map[string]any)
		if !ok {
			continue
		}

		id := strings.TrimSpace(asString(mv["id"]))
		qty := asInt(mv["quantity"])
		if id == "" || qty <= 0 {
			continue
		}

		out.Items = append(out.Items, cartItemDoc{
			ID:       id,
			Title:    strings.TrimSpace(asString(mv["title"])),
			Category: strings.TrimSpace(asString(mv["category"])),
			Price:    asFloat(mv["price"]),
			Quantity: qty,
			Image:    strings.TrimSpace(asString(mv["image"])),
		})
	}

	return out, nil
}

func cartDocFromDomain(c *cartdom.Cart) cartDoc {
	items := []cartItemDoc{}
	if c != nil {
		for _, it := range c.Items {
			id := strings.TrimSpace(it.ID)
			if id == "" || it.Quantity <= 0 {
				continue
			}
			items = append(items, cartItemDoc{
				ID:       id,
				Title:    it.Title,
				Category: it.Category,
				Price:    it.Price,
				Quantity: it.Quantity,
				Image:    it.Image,
			})
		}
	}

	return cartDoc{
		Items:     items,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		ExpiresAt: c.ExpiresAt,
	}
}

func (d cartDoc) toDomain() *cartdom.Cart {
	items := make([]cartdom.Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, cartdom.Item{
			ID:       it.ID,
			Title:    it.Title,
			Category: it.Category,
			Price:    it.Price,
			Quantity: it.Quantity,
			Image:    it.Image,
		})
	}

	return &cartdom.Cart{
		// ID is always filled by the caller (docId).
		Items:     items,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		ExpiresAt: d.ExpiresAt,
	}
}

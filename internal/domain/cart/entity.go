package cart

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
)

// DefaultCartTTL is the inactivity window after which the cart becomes eligible
// for auto deletion (Firestore TTL should be configured on expiresAt).
const DefaultCartTTL = 30 * 24 * time.Hour

// MergePolicy decides whether an added item combines with an existing line
// or creates a new one.
type MergePolicy string

const (
	// MergeByID merges only when the incoming item id matches an existing line.
	// Item ids are generated per add action, so this effectively appends.
	MergeByID MergePolicy = "id"

	// MergeByTitleCategory merges lines that share both title and category.
	MergeByTitleCategory MergePolicy = "title_category"
)

// ParseMergePolicy maps a config string onto a policy, defaulting to MergeByID.
func ParseMergePolicy(s string) MergePolicy {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case string(MergeByTitleCategory), "title+category", "titlecategory":
		return MergeByTitleCategory
	default:
		return MergeByID
	}
}

// Item represents one line item in a cart.
// Title/category/image are descriptive only and are not validated beyond trim.
type Item struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

// Cart represents one cart document.
//   - docId = sessionId
//   - Items preserve insertion order (order is not meaningful, but stable)
//   - ExpiresAt is refreshed on each mutation for store-side TTL
type Cart struct {
	// ID is the owning session id (= store docId).
	ID string `json:"id"`

	Items []Item `json:"items"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// New creates an empty cart for sessionID.
func New(sessionID string, now time.Time) (*Cart, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return nil, ErrInvalidCart
	}
	return &Cart{
		ID:        sid,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(DefaultCartTTL),
	}, nil
}

// Add merges-or-appends item per policy.
// Quantity below 1 is coerced to 1 (best-effort normalization, never rejected).
// Negative price is floored at 0.
func (c *Cart) Add(item Item, policy MergePolicy, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	item.ID = strings.TrimSpace(item.ID)
	item.Title = strings.TrimSpace(item.Title)
	item.Category = strings.TrimSpace(item.Category)
	if item.ID == "" {
		return ErrInvalidCart
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if item.Price < 0 {
		item.Price = 0
	}

	if c.Items == nil {
		c.Items = []Item{}
	}

	idx := c.mergeIndex(item, policy)
	if idx >= 0 {
		c.Items[idx].Quantity += item.Quantity
	} else {
		c.Items = append(c.Items, item)
	}

	c.touch(now)
	return nil
}

// SetQuantity sets quantity for itemID.
// qty <= 0 removes the line. Unknown itemID is a no-op (kept successful so
// UPDATE stays idempotent against racing removes).
func (c *Cart) SetQuantity(itemID string, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return ErrInvalidCart
	}

	idx := c.indexByID(id)
	if idx < 0 {
		c.touch(now)
		return nil
	}

	if qty <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = qty
	}

	c.touch(now)
	return nil
}

// Remove filters out itemID. Idempotent.
func (c *Cart) Remove(itemID string, now time.Time) error {
	return c.SetQuantity(itemID, 0, now)
}

// Clear empties the cart while keeping the document alive.
func (c *Cart) Clear(now time.Time) {
	if c == nil {
		return
	}
	c.Items = []Item{}
	c.touch(now)
}

// Total is the sum of price*quantity over all lines. Zero for an empty cart.
func (c *Cart) Total() float64 {
	if c == nil {
		return 0
	}
	var sum float64
	for _, it := range c.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// Count is the total number of units across all lines (badge count).
func (c *Cart) Count() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Expired reports whether the cart passed its TTL as of now.
func (c *Cart) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}
	return c.ExpiresAt.Before(now)
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(DefaultCartTTL)
}

func (c *Cart) indexByID(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) mergeIndex(item Item, policy MergePolicy) int {
	switch policy {
	case MergeByTitleCategory:
		for i := range c.Items {
			if c.Items[i].Title == item.Title && c.Items[i].Category == item.Category {
				return i
			}
		}
		return -1
	default:
		return c.indexByID(item.ID)
	}
}

// CloneItems returns a defensive copy of the item slice.
// Handlers hand items to JSON encoding while usecases may keep mutating the
// same cart value, so responses snapshot.
func (c *Cart) CloneItems() []Item {
	if c == nil || len(c.Items) == 0 {
		return []Item{}
	}
	out := make([]Item, len(c.Items))
	copy(out, c.Items)
	return out
}

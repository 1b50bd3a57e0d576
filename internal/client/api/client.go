package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"resty.dev/v3"

	cartdom "goaltickets/internal/domain/cart"
)

var (
	// ErrRequestFailed covers non-2xx responses and success=false envelopes.
	// Callers treat it as "operation was a no-op, keep local state".
	ErrRequestFailed = errors.New("cart api: request failed")
)

// Client talks to the cart backend. The server response is authoritative:
// every mutation returns the full cart and callers replace their mirror with
// it wholesale.
type Client struct {
	baseURL string
	http    *resty.Client
}

func NewClient(baseURL string) *Client {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    client,
	}
}

type cartEnvelope struct {
	Success bool           `json:"success"`
	Cart    []cartdom.Item `json:"cart"`
	Error   string         `json:"error"`
}

// GetCart fetches the current items. A missing session reads as empty.
func (c *Client) GetCart(ctx context.Context, sessionID string) ([]cartdom.Item, error) {
	return c.roundTrip(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Get(c.cartURL(sessionID, ""))
	})
}

// AddItem posts item; the returned slice is the merged server cart.
func (c *Client) AddItem(ctx context.Context, sessionID string, item cartdom.Item) ([]cartdom.Item, error) {
	return c.roundTrip(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(item).Post(c.cartURL(sessionID, "add"))
	})
}

// UpdateQuantity sets quantity for itemID (server removes at <= 0).
func (c *Client) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) ([]cartdom.Item, error) {
	return c.roundTrip(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(map[string]int{"quantity": quantity}).
			Put(c.cartURL(sessionID, "update/"+url.PathEscape(itemID)))
	})
}

// RemoveItem filters out itemID.
func (c *Client) RemoveItem(ctx context.Context, sessionID, itemID string) ([]cartdom.Item, error) {
	return c.roundTrip(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Delete(c.cartURL(sessionID, "remove/"+url.PathEscape(itemID)))
	})
}

// ClearCart empties the session's cart.
func (c *Client) ClearCart(ctx context.Context, sessionID string) ([]cartdom.Item, error) {
	return c.roundTrip(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Delete(c.cartURL(sessionID, ""))
	})
}

// NotifyFanID reports an applied fan id. Fire-and-forget on the server side;
// the error here only matters for logging.
func (c *Client) NotifyFanID(ctx context.Context, sessionID, fanID string, cartTotal float64) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"sessionId": sessionID,
			"fanId":     fanID,
			"cartTotal": cartTotal,
		}).
		Post(c.baseURL + "/api/notify/fanid")
	if err != nil {
		return fmt.Errorf("cart api: notify: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: notify status=%d", ErrRequestFailed, resp.StatusCode())
	}
	return nil
}

func (c *Client) cartURL(sessionID, rest string) string {
	u := c.baseURL + "/api/cart/" + url.PathEscape(strings.TrimSpace(sessionID))
	if rest != "" {
		u += "/" + rest
	}
	return u
}

func (c *Client) roundTrip(ctx context.Context, do func(*resty.Request) (*resty.Response, error)) ([]cartdom.Item, error) {
	var env cartEnvelope
	req := c.http.R().SetContext(ctx).SetResult(&env).SetError(&env)

	resp, err := do(req)
	if err != nil {
		return nil, fmt.Errorf("cart api: %w", err)
	}
	if resp.IsError() {
		msg := env.Error
		if msg == "" {
			msg = resp.Status()
		}
		return nil, fmt.Errorf("%w: status=%d %s", ErrRequestFailed, resp.StatusCode(), msg)
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, env.Error)
	}
	if env.Cart == nil {
		return []cartdom.Item{}, nil
	}
	return env.Cart, nil
}

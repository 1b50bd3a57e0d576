package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"goaltickets/internal/client/storage"
	cartdom "goaltickets/internal/domain/cart"
	sessiondom "goaltickets/internal/domain/session"
)

// SnapshotKey holds the pre-payment cart copy so a failed or abandoned
// payment can restore it.
const SnapshotKey = "cart_before_payment"

// ErrEmptyCart rejects a handoff with nothing to pay for.
var ErrEmptyCart = errors.New("checkout: cart is empty")

// Navigator performs the actual redirect to the external payment collector.
type Navigator interface {
	Navigate(checkoutURL string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(string) error

func (f NavigatorFunc) Navigate(u string) error { return f(u) }

// Billing is the fixed customer block forwarded to the collector.
type Billing struct {
	FirstName string
	LastName  string
	Address1  string
	City      string
	State     string
	Postcode  string
	Country   string
	Email     string
	Phone     string
}

// Config describes the external collector endpoint and the site identity
// sent along with every handoff.
type Config struct {
	// CollectorURL is the payment collector page, e.g.
	// https://pay.example.com/checkout.
	CollectorURL string
	// ReturnURL is the page the collector sends the buyer back to; the
	// outcome and session id are appended as query parameters.
	ReturnURL string

	Site           string
	Icon           string
	Image          string
	CurrencySymbol string
	// VATPercent is forwarded verbatim (the collector applies it).
	VATPercent string

	Billing Billing
}

// Handoff builds collector URLs and snapshots the cart before redirecting.
type Handoff struct {
	cfg   Config
	store storage.Store
	nav   Navigator
	now   func() time.Time
}

func New(cfg Config, store storage.Store, nav Navigator) *Handoff {
	return &Handoff{cfg: cfg, store: store, nav: nav, now: time.Now}
}

// Begin snapshots items, mints an order id and redirects to the collector.
// It returns the order id and the URL it navigated to.
func (h *Handoff) Begin(sessionID string, items []cartdom.Item, total float64) (orderID, checkoutURL string, err error) {
	if len(items) == 0 {
		return "", "", ErrEmptyCart
	}

	if err := h.snapshot(items); err != nil {
		// The redirect still proceeds; only restore-on-failure degrades.
		log.Printf("[checkout] WARN: cart snapshot failed: %v", err)
	}

	orderID = sessiondom.NewOrderID(h.now())
	checkoutURL = h.BuildURL(sessionID, orderID, total)

	if err := h.nav.Navigate(checkoutURL); err != nil {
		return "", "", fmt.Errorf("checkout: navigate: %w", err)
	}

	log.Printf("[checkout] handed off order=%s session=%s amount=%.2f", orderID, sessionID, total)
	return orderID, checkoutURL, nil
}

// BuildURL assembles the collector URL. Parameter names are the collector's
// contract and must not be changed — including the "riderect_*" spelling.
func (h *Handoff) BuildURL(sessionID, orderID string, total float64) string {
	q := url.Values{}
	q.Set("site", h.cfg.Site)
	q.Set("icon", h.cfg.Icon)
	q.Set("image", h.cfg.Image)
	q.Set("amount", fmt.Sprintf("%.2f", total))
	q.Set("symbol", h.cfg.CurrencySymbol)
	q.Set("vat", h.cfg.VATPercent)
	q.Set("order_id", orderID)

	b := h.cfg.Billing
	q.Set("billing_first_name", b.FirstName)
	q.Set("billing_last_name", b.LastName)
	q.Set("billing_address_1", b.Address1)
	q.Set("billing_city", b.City)
	q.Set("billing_state", b.State)
	q.Set("billing_postcode", b.Postcode)
	q.Set("billing_country", b.Country)
	q.Set("billing_email", b.Email)
	q.Set("billing_phone", b.Phone)

	q.Set("riderect_success", h.returnURL("success", sessionID))
	q.Set("riderect_failed", h.returnURL("failed", sessionID))
	q.Set("riderect_back", h.returnURL("back", sessionID))

	sep := "?"
	if strings.Contains(h.cfg.CollectorURL, "?") {
		sep = "&"
	}
	return h.cfg.CollectorURL + sep + q.Encode()
}

// RestoreSnapshot returns the cart captured before the last handoff, or nil
// when none was stored.
func (h *Handoff) RestoreSnapshot() ([]cartdom.Item, error) {
	raw, ok := h.store.Get(SnapshotKey)
	if !ok || raw == "" {
		return nil, nil
	}
	var items []cartdom.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("checkout: decode snapshot: %w", err)
	}
	return items, nil
}

// DropSnapshot discards the pre-payment copy (after a confirmed success).
func (h *Handoff) DropSnapshot() error {
	return h.store.Delete(SnapshotKey)
}

func (h *Handoff) snapshot(items []cartdom.Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return h.store.Set(SnapshotKey, string(raw))
}

func (h *Handoff) returnURL(outcome, sessionID string) string {
	u := h.cfg.ReturnURL
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	v := url.Values{}
	v.Set("payment_return", outcome)
	v.Set("session_id", sessionID)
	return u + sep + v.Encode()
}

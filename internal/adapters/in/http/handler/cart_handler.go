package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	usecase "goaltickets/internal/application/usecase"
	cartdom "goaltickets/internal/domain/cart"
)

// CartHandler serves /api/cart/{sessionId}[...].
//
// Routes (relative to the /api/cart/ mount):
//
//	GET    {sessionId}                    -> current items
//	POST   {sessionId}/add                -> merge-or-append, full cart back
//	PUT    {sessionId}/update/{itemId}    -> set quantity (<=0 removes)
//	DELETE {sessionId}/remove/{itemId}    -> filter out item
//	DELETE {sessionId}                    -> clear cart
//
// Every success response mirrors the full authoritative cart:
// {"success": true, "cart": [...]}.
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) http.Handler {
	return &CartHandler{uc: uc}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.uc == nil {
		log.Printf("[cart_handler] exit status=500 reason=uc is nil elapsed=%s", time.Since(start))
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	sessionID, rest := splitCartPath(r.URL.Path)
	if sessionID == "" {
		log.Printf("[cart_handler] exit status=404 reason=missing sessionId method=%s path=%q", r.Method, r.URL.Path)
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case r.Method == http.MethodGet && rest == "":
		h.handleGet(w, r, sessionID, start)
	case r.Method == http.MethodPost && rest == "add":
		h.handleAdd(w, r, sessionID, start)
	case r.Method == http.MethodPut && strings.HasPrefix(rest, "update/"):
		h.handleUpdate(w, r, sessionID, strings.TrimPrefix(rest, "update/"), start)
	case r.Method == http.MethodDelete && strings.HasPrefix(rest, "remove/"):
		h.handleRemove(w, r, sessionID, strings.TrimPrefix(rest, "remove/"), start)
	case r.Method == http.MethodDelete && rest == "":
		h.handleClear(w, r, sessionID, start)
	default:
		log.Printf("[cart_handler] exit status=404 method=%s path=%q elapsed=%s", r.Method, r.URL.Path, time.Since(start))
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request, sessionID string, start time.Time) {
	items, err := h.uc.Get(r.Context(), sessionID)
	if err != nil {
		h.fail(w, "GET", sessionID, err, start)
		return
	}
	h.ok(w, "GET", sessionID, items, start)
}

// itemReq decodes the add-item body with best-effort coercion: the storefront
// extracts price/quantity from DOM text, so both may arrive as strings.
type itemReq struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Price    any    `json:"price"`
	Quantity any    `json:"quantity"`
	Image    string `json:"image"`
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request, sessionID string, start time.Time) {
	var req itemReq
	if err := readJSON(r, &req); err != nil {
		log.Printf("[cart_handler] POST add exit status=400 reason=invalid json session=%s err=%v", sessionID, err)
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	item := cartdom.Item{
		ID:       strings.TrimSpace(req.ID),
		Title:    strings.TrimSpace(req.Title),
		Category: strings.TrimSpace(req.Category),
		Price:    coercePrice(req.Price),
		Quantity: coerceQuantity(req.Quantity, 1),
		Image:    strings.TrimSpace(req.Image),
	}
	if item.ID == "" {
		log.Printf("[cart_handler] POST add exit status=400 reason=missing item id session=%s", sessionID)
		writeErr(w, http.StatusBadRequest, "item id is required")
		return
	}

	items, err := h.uc.AddItem(r.Context(), sessionID, item)
	if err != nil {
		h.fail(w, "POST add", sessionID, err, start)
		return
	}
	h.ok(w, "POST add", sessionID, items, start)
}

type updateReq struct {
	Quantity any `json:"quantity"`
}

func (h *CartHandler) handleUpdate(w http.ResponseWriter, r *http.Request, sessionID, itemID string, start time.Time) {
	itemID = strings.TrimSpace(strings.TrimSuffix(itemID, "/"))
	if itemID == "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	var req updateReq
	if err := readJSON(r, &req); err != nil {
		log.Printf("[cart_handler] PUT update exit status=400 reason=invalid json session=%s err=%v", sessionID, err)
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	// Missing/non-numeric quantity coerces to 1, not to a remove.
	qty := coerceQuantity(req.Quantity, 1)

	items, err := h.uc.SetItemQuantity(r.Context(), sessionID, itemID, qty)
	if err != nil {
		h.fail(w, "PUT update", sessionID, err, start)
		return
	}
	h.ok(w, "PUT update", sessionID, items, start)
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request, sessionID, itemID string, start time.Time) {
	itemID = strings.TrimSpace(strings.TrimSuffix(itemID, "/"))
	if itemID == "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	items, err := h.uc.RemoveItem(r.Context(), sessionID, itemID)
	if err != nil {
		h.fail(w, "DELETE remove", sessionID, err, start)
		return
	}
	h.ok(w, "DELETE remove", sessionID, items, start)
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request, sessionID string, start time.Time) {
	if err := h.uc.Clear(r.Context(), sessionID); err != nil {
		h.fail(w, "DELETE clear", sessionID, err, start)
		return
	}
	h.ok(w, "DELETE clear", sessionID, []cartdom.Item{}, start)
}

func (h *CartHandler) ok(w http.ResponseWriter, op, sessionID string, items []cartdom.Item, start time.Time) {
	log.Printf("[cart_handler] %s ok status=200 session=%s items=%d elapsed=%s", op, sessionID, len(items), time.Since(start))
	if items == nil {
		items = []cartdom.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"cart":    items,
	})
}

func (h *CartHandler) fail(w http.ResponseWriter, op, sessionID string, err error, start time.Time) {
	log.Printf("[cart_handler] %s error session=%s err=%v elapsed=%s", op, sessionID, err, time.Since(start))
	if errors.Is(err, usecase.ErrCartInvalidArgument) || errors.Is(err, cartdom.ErrInvalidCart) {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeErr(w, http.StatusInternalServerError, err.Error())
}

// splitCartPath extracts (sessionId, rest) from a path like
// /api/cart/{sessionId}/update/{itemId}.
func splitCartPath(p string) (string, string) {
	p = strings.TrimPrefix(p, "/api/cart")
	p = strings.Trim(p, "/")
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	sessionID := strings.TrimSpace(parts[0])
	rest := ""
	if len(parts) == 2 {
		rest = parts[1]
	}
	return sessionID, rest
}

package http

import (
	"log"
	"net/http"
)

// Deps is the storefront handler set.
type Deps struct {
	Cart   http.Handler
	Notify http.Handler
	Health http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead (so the process
// never crashes on a half-wired container).
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers all routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	handleSafe(mux, "/api/cart/", deps.Cart, "Cart")
	handleSafe(mux, "/api/notify/fanid", deps.Notify, "Notify")
	handleSafe(mux, "/health", deps.Health, "Health")
}

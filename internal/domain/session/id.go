package session

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// ID is an opaque per-browser session identifier scoping one cart.
type ID = string

const (
	sessionPrefix = "session_"
	itemPrefix    = "item_"
	orderPrefix   = "order_"

	// suffixLen matches the 9 base36 chars the storefront has always produced.
	suffixLen = 9
)

// NewID generates a session identifier of the form session_<unix-ms>_<random>.
func NewID(now time.Time) ID {
	return sessionPrefix + stamp(now)
}

// NewItemID generates a line-item identifier (item_<unix-ms>_<random>).
// Item ids are unique per add action, not per product.
func NewItemID(now time.Time) string {
	return itemPrefix + stamp(now)
}

// NewOrderID generates a checkout order identifier (order_<unix-ms>_<random>).
func NewOrderID(now time.Time) string {
	return orderPrefix + stamp(now)
}

// Valid reports whether s looks like an identifier this system issued.
// The check is deliberately loose: identifiers coming back from the payment
// collector must keep working even if the format drifts across deployments.
func Valid(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && strings.HasPrefix(s, sessionPrefix) && len(s) > len(sessionPrefix)
}

func stamp(now time.Time) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), randBase36(suffixLen))
}

var base36 = []byte("0123456789abcdefghijklmnopqrstuvwxyz")

func randBase36(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(base36)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failure leaves a deterministic fallback; uniqueness
			// still comes from the millisecond timestamp in the caller.
			b[i] = base36[i%len(base36)]
			continue
		}
		b[i] = base36[v.Int64()]
	}
	return string(b)
}

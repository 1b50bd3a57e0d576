package sync

import (
	"context"
	"log"
	"net/url"
)

// Payment outcomes carried on the return redirect.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeBack    = "back"
)

// Return is a parsed payment-return redirect.
type Return struct {
	Outcome   string
	SessionID string
}

// Reconciler is what HandleReturn needs from the cart mirror.
type Reconciler interface {
	AdoptSession(id string)
	Refresh(ctx context.Context) error
}

// ParseReturn inspects a page URL for payment-return parameters. When
// present it returns the parsed outcome and the same URL with both
// parameters stripped, so the address can be rewritten and a reload does
// not replay the adoption.
func ParseReturn(rawURL string) (ret Return, cleanURL string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Return{}, rawURL, false
	}

	q := u.Query()
	outcome := q.Get("payment_return")
	if outcome != OutcomeSuccess && outcome != OutcomeFailed && outcome != OutcomeBack {
		return Return{}, rawURL, false
	}

	ret = Return{Outcome: outcome, SessionID: q.Get("session_id")}

	q.Del("payment_return")
	q.Del("session_id")
	u.RawQuery = q.Encode()
	return ret, u.String(), true
}

// HandleReturn applies a payment-return redirect: adopt the carried session
// id (it always wins over any locally stored one) and re-fetch the cart.
// The returned URL has the return parameters stripped; handled reports
// whether rawURL was a payment return at all.
func HandleReturn(ctx context.Context, r Reconciler, rawURL string) (cleanURL string, handled bool) {
	ret, clean, ok := ParseReturn(rawURL)
	if !ok {
		return rawURL, false
	}

	if ret.SessionID != "" {
		r.AdoptSession(ret.SessionID)
	}
	if err := r.Refresh(ctx); err != nil {
		log.Printf("[sync] payment-return refresh failed outcome=%s err=%v", ret.Outcome, err)
	}

	log.Printf("[sync] payment return outcome=%s session=%s", ret.Outcome, ret.SessionID)
	return clean, true
}

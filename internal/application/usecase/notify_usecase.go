package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// Notifier is an outbound port for operator alerts (Telegram chat, email).
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

var (
	ErrNotifyInvalidArgument = errors.New("notify_usecase: invalid argument")
)

// NotifyUsecase fans a fan-ID alert out to all configured notifiers.
//
// Delivery is fire-and-forget: downstream failures are logged and never
// surface to the caller, so the storefront request always succeeds once the
// input parses.
type NotifyUsecase struct {
	notifiers []Notifier
}

func NewNotifyUsecase(notifiers ...Notifier) *NotifyUsecase {
	ns := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			ns = append(ns, n)
		}
	}
	return &NotifyUsecase{notifiers: ns}
}

// FanIDInput mirrors the storefront's apply-promo payload.
type FanIDInput struct {
	SessionID string
	FanID     string
	CartTotal float64
}

// NotifyFanID formats and dispatches the fan-ID alert.
func (uc *NotifyUsecase) NotifyFanID(ctx context.Context, in FanIDInput) error {
	sid := strings.TrimSpace(in.SessionID)
	fan := strings.TrimSpace(in.FanID)
	if sid == "" || fan == "" {
		return ErrNotifyInvalidArgument
	}

	msg := FormatFanIDMessage(sid, fan, in.CartTotal)

	if len(uc.notifiers) == 0 {
		log.Printf("[notify_uc] WARN: no notifiers configured, dropping fan-id alert session=%s", sid)
		return nil
	}

	for _, n := range uc.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			log.Printf("[notify_uc] WARN: notifier %T failed session=%s err=%v", n, sid, err)
		}
	}
	return nil
}

// FormatFanIDMessage renders the operator-facing alert text.
// HTML tags are what the Telegram sendMessage parse_mode expects.
func FormatFanIDMessage(sessionID, fanID string, cartTotal float64) string {
	return fmt.Sprintf(
		"<b>Fan ID applied</b>\nFan ID: %s\nCart total: $%.2f USD\nSession: %s",
		fanID, cartTotal, sessionID,
	)
}

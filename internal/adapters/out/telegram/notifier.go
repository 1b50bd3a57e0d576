package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"resty.dev/v3"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier posts operator alerts to a Telegram chat via the bot sendMessage
// endpoint.
type Notifier struct {
	apiBase string
	token   string
	chatID  string
	client  *resty.Client
}

// NewNotifier creates a Telegram notifier. token and chatID are required.
func NewNotifier(token, chatID string) *Notifier {
	return NewNotifierWithBase(defaultAPIBase, token, chatID)
}

// NewNotifierWithBase allows overriding the API host (tests).
func NewNotifierWithBase(apiBase, token, chatID string) *Notifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Notifier{
		apiBase: strings.TrimRight(strings.TrimSpace(apiBase), "/"),
		token:   strings.TrimSpace(token),
		chatID:  strings.TrimSpace(chatID),
		client:  client,
	}
}

type sendMessageReq struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResp struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends message as HTML. The caller treats errors as log-only.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	if n == nil || n.token == "" || n.chatID == "" {
		return errors.New("telegram: notifier is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)

	var out sendMessageResp
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(sendMessageReq{
			ChatID:    n.chatID,
			Text:      message,
			ParseMode: "HTML",
		}).
		SetResult(&out).
		Post(url)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram: send failed status=%d body=%s", resp.StatusCode(), resp.String())
	}
	if !out.OK {
		return fmt.Errorf("telegram: api error: %s", out.Description)
	}

	log.Printf("[telegram] message sent chat=%s", n.chatID)
	return nil
}

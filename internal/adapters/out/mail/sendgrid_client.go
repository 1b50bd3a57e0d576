package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridNotifier emails operator alerts. Optional second channel next to
// the Telegram webhook; constructed only when an API key is configured.
type SendGridNotifier struct {
	apiKey  string
	from    string
	to      string
	subject string
}

func NewSendGridNotifier(apiKey, from, to string) *SendGridNotifier {
	return &SendGridNotifier{
		apiKey:  apiKey,
		from:    from,
		to:      to,
		subject: "Fan ID applied",
	}
}

// Notify sends body as a plain-text + minimal-HTML email.
func (c *SendGridNotifier) Notify(ctx context.Context, body string) error {
	if c == nil || c.apiKey == "" {
		return fmt.Errorf("sendgrid: api key is empty")
	}
	if c.from == "" || c.to == "" {
		return fmt.Errorf("sendgrid: from/to address is empty")
	}

	fromEmail := mail.NewEmail("Goaltickets", c.from)
	toEmail := mail.NewEmail("", c.to)

	message := mail.NewSingleEmail(
		fromEmail,
		c.subject,
		toEmail,
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	client := sendgrid.NewSendClient(c.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: send error: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Printf("[sendgrid] error status=%d, body=%s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid: send failed: status=%d", response.StatusCode)
	}

	log.Printf("[sendgrid] mail sent: status=%d to=%s subject=%s", response.StatusCode, c.to, c.subject)
	return nil
}

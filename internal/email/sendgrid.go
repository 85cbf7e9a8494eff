package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridSender creates a sender for apiKey.
func NewSendGridSender(apiKey, from, fromName string) *SendGridSender {
	if fromName == "" {
		fromName = brand
	}
	return &SendGridSender{client: sendgrid.NewSendClient(apiKey), from: from, fromName: fromName}
}

// Send delivers m.
func (s *SendGridSender) Send(ctx context.Context, m Message) error {
	if s.from == "" {
		return fmt.Errorf("from address is empty")
	}
	if m.To == "" {
		return fmt.Errorf("to address is empty")
	}

	resp, err := s.client.SendWithContext(ctx, s.message(m))
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *SendGridSender) message(m Message) *mail.SGMailV3 {
	html := m.HTML
	if html == "" {
		html = fmt.Sprintf("<pre>%s</pre>", m.Text)
	}
	return mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		m.Subject,
		mail.NewEmail(m.ToName, m.To),
		m.Text,
		html,
	)
}

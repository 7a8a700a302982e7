package mail

import (
	"context"
	"fmt"
	"net/http"
	netmail "net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender uses the SendGrid v3 mail send API.
type SendGridSender struct {
	apiKey   string
	from     string
	endpoint string
}

func NewSendGridSender(apiKey, from string) *SendGridSender {
	return &SendGridSender{apiKey: apiKey, from: from}
}

// WithEndpoint points the sender at another mail send URL.
func (s *SendGridSender) WithEndpoint(url string) *SendGridSender {
	s.endpoint = url
	return s
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s.apiKey == "" {
		return fmt.Errorf("mail.SendGridSender.Send: %w", ErrNotConfigured)
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("mail.SendGridSender.Send: %w", err)
	}

	to, err := netmail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("mail.SendGridSender.Send: %w: %w", ErrInvalidMessage, err)
	}

	email := sgmail.NewSingleEmail(
		sgmail.NewEmail("", s.from),
		msg.Subject,
		sgmail.NewEmail(to.Name, to.Address),
		msg.Body,
		"",
	)

	// The client carries the request body, so one is built per send.
	client := sendgrid.NewSendClient(s.apiKey)
	if s.endpoint != "" {
		client.BaseURL = s.endpoint
	}

	resp, err := client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("mail.SendGridSender.Send: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("mail.SendGridSender.Send: status %d: %s", resp.StatusCode, truncate(resp.Body, 512))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender submits mail over SMTP, upgrading with STARTTLS when the server
// offers it and authenticating with PLAIN.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string

	tlsPolicy gomail.TLSPolicy
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		user:      user,
		password:  password,
		from:      from,
		tlsPolicy: gomail.TLSOpportunistic,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.host == "" || s.user == "" || s.password == "" {
		return fmt.Errorf("mail.SMTPSender.Send: %w", ErrNotConfigured)
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("mail.SMTPSender.Send: %w", err)
	}

	m, err := s.buildMsg(msg)
	if err != nil {
		return fmt.Errorf("mail.SMTPSender.Send: %w", err)
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithTLSPolicy(s.tlsPolicy),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.user),
		gomail.WithPassword(s.password),
	)
	if err != nil {
		return fmt.Errorf("mail.SMTPSender.Send: client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail.SMTPSender.Send: %w", err)
	}
	return nil
}

// buildMsg renders msg as a plain-text message. Header encoding and
// envelope addresses come from go-mail.
func (s *SMTPSender) buildMsg(msg Message) (*gomail.Msg, error) {
	from := s.from
	if from == "" {
		from = s.user
	}

	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("%w: recipient: %w", ErrInvalidMessage, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

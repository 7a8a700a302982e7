// Package mail delivers plain-text notification email. Messages go through a
// Redis-backed job queue drained by background workers; when the queue is
// unavailable the dispatcher sends inline.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var (
	// ErrNotConfigured is returned by a sender missing its credentials.
	ErrNotConfigured = errors.New("mail: sender not configured") //nolint:gochecknoglobals // sentinel error
	// ErrInvalidMessage is returned for a message without a valid recipient or subject.
	ErrInvalidMessage = errors.New("mail: invalid message") //nolint:gochecknoglobals // sentinel error
	// ErrDeliveryFailed is returned when a message could neither be queued nor sent.
	ErrDeliveryFailed = errors.New("mail: delivery failed") //nolint:gochecknoglobals // sentinel error
)

// Message is a single plain-text email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Validate checks the recipient address and that a subject is set.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidMessage)
	}
	if strings.ContainsAny(m.Subject, "\r\n") {
		return fmt.Errorf("%w: subject contains line breaks", ErrInvalidMessage)
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: recipient: %w", ErrInvalidMessage, err)
	}
	return nil
}

// Sender delivers a message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

package mail

import (
	"context"
	"errors"
	"fmt"
)

// FallbackSender tries each sender in order until one succeeds. Senders that
// report ErrNotConfigured are skipped silently.
type FallbackSender struct {
	senders []Sender
}

func NewFallbackSender(senders ...Sender) *FallbackSender {
	return &FallbackSender{senders: senders}
}

func (f *FallbackSender) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range f.senders {
		err := s.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrInvalidMessage) {
			return fmt.Errorf("mail.FallbackSender.Send: %w", err)
		}
		if !errors.Is(err, ErrNotConfigured) {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return fmt.Errorf("mail.FallbackSender.Send: %w", ErrNotConfigured)
	}
	return fmt.Errorf("mail.FallbackSender.Send: %w", errors.Join(errs...))
}

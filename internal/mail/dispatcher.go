package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// QueueKey is the Redis list holding pending mail jobs.
const QueueKey = "campusbot:mail"

// JobQueue is a FIFO of serialized jobs. *redisstore.Queue satisfies it.
type JobQueue interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
}

// Job is the queued form of a message.
type Job struct {
	Message  Message   `json:"message"`
	Attempts int       `json:"attempts"`
	Queued   time.Time `json:"queued_at"`
}

// Dispatcher hands messages to the queue, sending inline when the queue
// cannot take them.
type Dispatcher struct {
	queue  JobQueue
	sender Sender
}

// NewDispatcher creates a dispatcher. A nil queue always sends inline.
func NewDispatcher(queue JobQueue, sender Sender) *Dispatcher {
	return &Dispatcher{queue: queue, sender: sender}
}

// Deliver queues msg for a worker. If the queue rejects it the message is
// sent inline; when both fail the result wraps ErrDeliveryFailed and both causes.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("mail.Dispatcher.Deliver: %w", err)
	}

	var queueErr error
	if d.queue != nil {
		payload, err := json.Marshal(Job{Message: msg, Queued: time.Now()})
		if err != nil {
			return fmt.Errorf("mail.Dispatcher.Deliver: marshal: %w", err)
		}
		queueErr = d.queue.Push(ctx, payload)
		if queueErr == nil {
			return nil
		}
		log.Warn().Err(queueErr).Msg("mail: queue unavailable, sending inline")
	}

	sendErr := d.sender.Send(ctx, msg)
	if sendErr == nil {
		return nil
	}

	return fmt.Errorf("mail.Dispatcher.Deliver: %w", errors.Join(ErrDeliveryFailed, queueErr, sendErr))
}

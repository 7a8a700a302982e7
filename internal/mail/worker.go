package mail

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	redisstore "github.com/gosuda/campusbot/internal/store/redis"
)

const (
	popTimeout   = 5 * time.Second
	errorBackoff = 3 * time.Second
	requeueGrace = 5 * time.Second
)

// Worker drains the mail queue.
type Worker struct {
	queue      JobQueue
	sender     Sender
	maxRetries int

	// backoff returns the wait before retry n (0-based).
	backoff func(retry int) time.Duration
}

// NewWorker creates a worker that retries a failed send up to maxRetries
// times, waiting 2^n seconds before retry n.
func NewWorker(queue JobQueue, sender Sender, maxRetries int) *Worker {
	return &Worker{
		queue:      queue,
		sender:     sender,
		maxRetries: maxRetries,
		backoff:    ExponentialBackoff(time.Second),
	}
}

// ExponentialBackoff returns base * 2^n.
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	return func(n int) time.Duration {
		return base << n
	}
}

// WithBackoff replaces the retry schedule.
func (w *Worker) WithBackoff(fn func(int) time.Duration) *Worker {
	w.backoff = fn
	return w
}

// Run starts n consumers and blocks until ctx is canceled and all of them
// have returned.
func (w *Worker) Run(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	log.Info().Int("workers", n).Msg("mail: workers started")

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx, i)
		}()
	}
	wg.Wait()
	log.Info().Msg("mail: workers stopped")
}

func (w *Worker) loop(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			return
		}

		payload, err := w.queue.Pop(ctx, popTimeout)
		if errors.Is(err, redisstore.ErrQueueEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Int("worker", id).Msg("mail: pop failed")
			if !sleep(ctx, errorBackoff) {
				return
			}
			continue
		}

		var job Job
		if err := json.Unmarshal(payload, &job); err != nil {
			log.Error().Err(err).Int("worker", id).Msg("mail: dropping malformed job")
			continue
		}

		w.Process(ctx, &job)
	}
}

// Process sends one job, retrying with backoff. If ctx ends while waiting the
// job is pushed back onto the queue.
func (w *Worker) Process(ctx context.Context, job *Job) {
	for {
		err := w.sender.Send(ctx, job.Message)
		if err == nil {
			return
		}
		if errors.Is(err, ErrInvalidMessage) || job.Attempts >= w.maxRetries {
			log.Error().Err(err).Str("to", job.Message.To).Int("retries", job.Attempts).
				Msg("mail: giving up on message")
			return
		}

		wait := w.backoff(job.Attempts)
		job.Attempts++
		log.Warn().Err(err).Str("to", job.Message.To).Int("retry", job.Attempts).Dur("backoff", wait).
			Msg("mail: send failed, retrying")

		if !sleep(ctx, wait) {
			w.requeue(ctx, job)
			return
		}
	}
}

func (w *Worker) requeue(ctx context.Context, job *Job) {
	payload, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Msg("mail: marshal job for requeue")
		return
	}
	rqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueGrace)
	defer cancel()
	if err := w.queue.Push(rqCtx, payload); err != nil {
		log.Error().Err(err).Str("to", job.Message.To).Msg("mail: requeue failed, message lost")
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

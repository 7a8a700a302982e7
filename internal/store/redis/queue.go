package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Pop when no job arrived before the timeout.
var ErrQueueEmpty = errors.New("redis: queue empty")

// Queue is a FIFO job list: LPUSH on one end, BRPOP on the other.
type Queue struct {
	client *redis.Client
	key    string
}

// Key returns the Redis list key backing the queue.
func (q *Queue) Key() string {
	return q.key
}

func (q *Queue) Push(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("redis.Queue.Push: %w", err)
	}
	return nil
}

// Pop blocks up to timeout for the oldest job.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("redis.Queue.Pop: %w", err)
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("redis.Queue.Pop: unexpected reply length %d", len(res))
	}
	return []byte(res[1]), nil
}

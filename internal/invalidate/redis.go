package invalidate

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher is the subset of the go-redis client used for invalidation.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Redis publishes signals on a pub/sub channel.
type Redis struct {
	client  RedisPublisher
	channel string
	timeout time.Duration
}

// NewRedis creates a Redis notifier. A zero timeout uses DefaultTimeout.
func NewRedis(client RedisPublisher, channel string, timeout time.Duration) *Redis {
	return &Redis{
		client:  client,
		channel: channel,
		timeout: timeoutOrDefault(timeout),
	}
}

func (r *Redis) Invalidate(ctx context.Context, views ...string) {
	if len(views) == 0 {
		return
	}

	payload, err := encode(views)
	if err != nil {
		record(ctx, "redis", views, err)
		return
	}

	// Detach from request cancellation so a finished request still publishes.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	err = r.client.Publish(ctx, r.channel, payload).Err()
	record(ctx, "redis", views, err)
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/invalidate"
)

type NotifyFlags struct {
	Backends       []string      `help:"cache invalidation backends (none, log, redis, sqs)" default:"log" env:"PORTAL_NOTIFY_BACKENDS"`
	Timeout        time.Duration `help:"per-message publish timeout" default:"2s" env:"PORTAL_NOTIFY_TIMEOUT"`
	RedisURL       string        `name:"redis-url" help:"Redis URL for invalidation messages" env:"PORTAL_NOTIFY_REDIS_URL"`
	RedisChannel   string        `help:"Redis pub/sub channel" default:"portal.invalidate" env:"PORTAL_NOTIFY_REDIS_CHANNEL"`
	SQSQueueURL    string        `name:"sqs-queue-url" help:"SQS queue URL for invalidation messages" env:"PORTAL_NOTIFY_SQS_QUEUE_URL"`
	SQSEndpointURL string        `name:"sqs-endpoint-url" help:"SQS endpoint URL override (for LocalStack)" env:"PORTAL_NOTIFY_SQS_ENDPOINT_URL"`
}

func (n *NotifyFlags) Validate() error {
	for _, backend := range n.Backends {
		switch backend {
		case "redis":
			if n.RedisURL == "" {
				return errors.New("redis URL is required for the redis backend (--notify-redis-url or PORTAL_NOTIFY_REDIS_URL)")
			}
		case "sqs":
			if n.SQSQueueURL == "" {
				return errors.New("SQS queue URL is required for the sqs backend (--notify-sqs-queue-url or PORTAL_NOTIFY_SQS_QUEUE_URL)")
			}
		case "none", "log":
		default:
			return fmt.Errorf("unknown notify backend %q", backend)
		}
	}
	return nil
}

// notifier builds the configured invalidation fan-out. The returned close func releases
// backend connections.
func (n *NotifyFlags) notifier(ctx context.Context) (invalidate.Notifier, func(), error) {
	if err := n.Validate(); err != nil {
		return nil, nil, fmt.Errorf("failed to validate notify flags: %w", err)
	}

	var (
		multi   invalidate.Multi
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, backend := range n.Backends {
		switch backend {
		case "log":
			multi = append(multi, invalidate.Log{})

		case "redis":
			opts, err := redis.ParseURL(n.RedisURL)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("failed to parse redis URL: %w", err)
			}
			client := redis.NewClient(opts)
			closers = append(closers, func() {
				if err := client.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close redis client")
				}
			})
			multi = append(multi, invalidate.NewRedis(client, n.RedisChannel, n.Timeout))
			log.Info().Str("channel", n.RedisChannel).Msg("Publishing invalidations to redis")

		case "sqs":
			awsConfig, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
			}

			var sqsClientOpts []func(*sqs.Options)
			if n.SQSEndpointURL != "" {
				sqsClientOpts = append(sqsClientOpts, func(o *sqs.Options) {
					o.BaseEndpoint = aws.String(n.SQSEndpointURL)
				})
			}
			multi = append(multi, invalidate.NewSQS(sqs.NewFromConfig(awsConfig, sqsClientOpts...), n.SQSQueueURL, n.Timeout))
			log.Info().Str("queue_url", n.SQSQueueURL).Msg("Publishing invalidations to SQS")
		}
	}

	switch len(multi) {
	case 0:
		return invalidate.Nop{}, closeAll, nil
	case 1:
		return multi[0], closeAll, nil
	}
	return multi, closeAll, nil
}

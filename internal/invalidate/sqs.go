package invalidate

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSSender is the subset of the SQS client used for invalidation.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQS sends signals as messages to a queue.
type SQS struct {
	client   SQSSender
	queueURL string
	timeout  time.Duration
}

// NewSQS creates an SQS notifier. A zero timeout uses DefaultTimeout.
func NewSQS(client SQSSender, queueURL string, timeout time.Duration) *SQS {
	return &SQS{
		client:   client,
		queueURL: queueURL,
		timeout:  timeoutOrDefault(timeout),
	}
}

func (s *SQS) Invalidate(ctx context.Context, views ...string) {
	if len(views) == 0 {
		return
	}

	body, err := encode(views)
	if err != nil {
		record(ctx, "sqs", views, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(body),
	})
	record(ctx, "sqs", views, err)
}

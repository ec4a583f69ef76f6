package invalidate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestViewKeys(t *testing.T) {
	id := uuid.MustParse("0191d1a4-3b2c-7def-8000-000000000001")
	require.Equal(t, "admin/clients/0191d1a4-3b2c-7def-8000-000000000001", AdminClientView(id))
	require.Equal(t, "portal/acme", PortalView("acme"))
}

func TestMulti(t *testing.T) {
	var got [][]string
	rec := Func(func(ctx context.Context, views ...string) {
		got = append(got, views)
	})

	Multi{rec, Nop{}, Log{}, rec}.Invalidate(context.Background(), "portal/acme")

	require.Equal(t, [][]string{{"portal/acme"}, {"portal/acme"}}, got)
}

type fakeRedis struct {
	channel  string
	message  any
	deadline bool
	err      error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.message = message
	_, f.deadline = ctx.Deadline()

	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedis_Invalidate(t *testing.T) {
	t.Run("publishes views as json", func(t *testing.T) {
		client := &fakeRedis{}
		n := NewRedis(client, "portal:invalidate", 0)

		n.Invalidate(context.Background(), "admin/clients/1", "portal/acme")

		require.Equal(t, "portal:invalidate", client.channel)
		require.True(t, client.deadline, "publish must be bounded")

		var msg Message
		require.NoError(t, json.Unmarshal([]byte(client.message.(string)), &msg))
		require.Equal(t, []string{"admin/clients/1", "portal/acme"}, msg.Views)
		require.False(t, msg.At.IsZero())
	})

	t.Run("errors are swallowed", func(t *testing.T) {
		client := &fakeRedis{err: errors.New("connection refused")}
		n := NewRedis(client, "portal:invalidate", time.Second)

		require.NotPanics(t, func() {
			n.Invalidate(context.Background(), "portal/acme")
		})
	})

	t.Run("no views is a no-op", func(t *testing.T) {
		client := &fakeRedis{}
		NewRedis(client, "portal:invalidate", 0).Invalidate(context.Background())
		require.Nil(t, client.message)
	})

	t.Run("cancelled request still publishes", func(t *testing.T) {
		client := &fakeRedis{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		NewRedis(client, "portal:invalidate", 0).Invalidate(ctx, "portal/acme")
		require.NotNil(t, client.message)
	})
}

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("missing deadline")
	}
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSQS_Invalidate(t *testing.T) {
	client := &fakeSQS{}
	n := NewSQS(client, "https://sqs.us-west-2.amazonaws.com/123456789/portal-invalidate", 0)

	n.Invalidate(context.Background(), "portal/acme")

	require.Len(t, client.inputs, 1)
	require.Equal(t, "https://sqs.us-west-2.amazonaws.com/123456789/portal-invalidate", aws.ToString(client.inputs[0].QueueUrl))

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[0].MessageBody)), &msg))
	require.Equal(t, []string{"portal/acme"}, msg.Views)

	client.err = errors.New("throttled")
	require.NotPanics(t, func() {
		n.Invalidate(context.Background(), "portal/acme")
	})
	require.Len(t, client.inputs, 2)
}

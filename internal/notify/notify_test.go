package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mailersend/mailersend-go"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testMessage = reservations.Message{To: "owner@alpha.com", Subject: reservations.SubjectOwner, Body: "Bookstore: Alpha"}

type mockSNS struct {
	publishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, params, optFns...)
	}
	return &sns.PublishOutput{MessageId: aws.String("mid")}, nil
}

type mockSQS struct {
	getQueueURLFunc func(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	sendMessageFunc func(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

func (m *mockSQS) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	if m.getQueueURLFunc != nil {
		return m.getQueueURLFunc(ctx, params, optFns...)
	}
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String("https://sqs.local/000000000000/" + aws.ToString(params.QueueName))}, nil
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, params, optFns...)
	}
	return &sqs.SendMessageOutput{}, nil
}

type mockMailSender struct {
	sent []*mailersend.Message
	err  error
}

func (m *mockMailSender) Send(_ context.Context, message *mailersend.Message) (*mailersend.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, message)
	return nil, nil
}

type mockPublisher struct {
	key     []byte
	value   []byte
	headers []kafkago.Header
	err     error
}

func (m *mockPublisher) Publish(_ context.Context, key, value []byte, headers ...kafkago.Header) error {
	m.key, m.value, m.headers = key, value, headers
	return m.err
}

func TestLog_Send(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	n := NewLog(zap.New(core))

	require.NoError(t, n.Send(context.Background(), testMessage))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "owner@alpha.com", fields["recipient"])
	assert.Equal(t, reservations.SubjectOwner, fields["subject"])
}

func TestSNS_Send(t *testing.T) {
	t.Parallel()

	t.Run("publishes with recipient attribute", func(t *testing.T) {
		t.Parallel()

		var captured *sns.PublishInput
		n := NewSNS(&mockSNS{publishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{}, nil
		}}, "arn:aws:sns:ap-northeast-2:000000000000:success-reservation")

		require.NoError(t, n.Send(context.Background(), testMessage))

		require.NotNil(t, captured)
		assert.Equal(t, "arn:aws:sns:ap-northeast-2:000000000000:success-reservation", aws.ToString(captured.TopicArn))
		assert.Equal(t, reservations.SubjectOwner, aws.ToString(captured.Subject))
		assert.Equal(t, "Bookstore: Alpha", aws.ToString(captured.Message))
		assert.Equal(t, "owner@alpha.com", aws.ToString(captured.MessageAttributes[RecipientAttribute].StringValue))
	})

	t.Run("publish error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("AuthorizationError")
		n := NewSNS(&mockSNS{publishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, cause
		}}, "arn")

		assert.ErrorIs(t, n.Send(context.Background(), testMessage), cause)
	})

	t.Run("empty recipient", func(t *testing.T) {
		t.Parallel()

		n := NewSNS(&mockSNS{}, "arn")
		assert.Error(t, n.Send(context.Background(), reservations.Message{Subject: "s"}))
	})
}

func TestSQS(t *testing.T) {
	t.Parallel()

	t.Run("standard queue", func(t *testing.T) {
		t.Parallel()

		var captured *sqs.SendMessageInput
		n, err := NewSQS(context.Background(), &mockSQS{sendMessageFunc: func(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
			captured = params
			return &sqs.SendMessageOutput{}, nil
		}}, "reservation-mail")
		require.NoError(t, err)

		require.NoError(t, n.Send(context.Background(), testMessage))

		assert.Equal(t, "https://sqs.local/000000000000/reservation-mail", aws.ToString(captured.QueueUrl))
		assert.Nil(t, captured.MessageGroupId)
		var body reservations.Message
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(captured.MessageBody)), &body))
		assert.Equal(t, testMessage, body)
	})

	t.Run("fifo queue groups by recipient", func(t *testing.T) {
		t.Parallel()

		var captured *sqs.SendMessageInput
		n, err := NewSQS(context.Background(), &mockSQS{sendMessageFunc: func(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
			captured = params
			return &sqs.SendMessageOutput{}, nil
		}}, "reservation-mail.fifo")
		require.NoError(t, err)

		require.NoError(t, n.Send(context.Background(), testMessage))

		assert.Equal(t, "owner@alpha.com", aws.ToString(captured.MessageGroupId))
		assert.NotEmpty(t, aws.ToString(captured.MessageDeduplicationId))
	})

	t.Run("queue lookup fails", func(t *testing.T) {
		t.Parallel()

		_, err := NewSQS(context.Background(), &mockSQS{getQueueURLFunc: func(context.Context, *sqs.GetQueueUrlInput, ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
			return nil, errors.New("QueueDoesNotExist")
		}}, "missing")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "QueueDoesNotExist")
	})

	t.Run("empty queue name", func(t *testing.T) {
		t.Parallel()

		_, err := NewSQS(context.Background(), &mockSQS{}, "")
		assert.Error(t, err)
	})

	t.Run("send error", func(t *testing.T) {
		t.Parallel()

		n, err := NewSQS(context.Background(), &mockSQS{sendMessageFunc: func(context.Context, *sqs.SendMessageInput, ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
			return nil, errors.New("throttled")
		}}, "reservation-mail")
		require.NoError(t, err)

		assert.Error(t, n.Send(context.Background(), testMessage))
	})
}

func TestMailerSend_Send(t *testing.T) {
	t.Parallel()

	t.Run("sends one message", func(t *testing.T) {
		t.Parallel()

		sender := &mockMailSender{}
		n := newMailerSend(sender, "noreply@bookstores.example", "Bookstore Reservations")

		require.NoError(t, n.Send(context.Background(), testMessage))
		assert.Len(t, sender.sent, 1)
	})

	t.Run("send error", func(t *testing.T) {
		t.Parallel()

		n := newMailerSend(&mockMailSender{err: errors.New("422 unprocessable")}, "noreply@bookstores.example", "")

		err := n.Send(context.Background(), testMessage)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "422 unprocessable")
	})

	t.Run("empty recipient", func(t *testing.T) {
		t.Parallel()

		sender := &mockMailSender{}
		n := newMailerSend(sender, "noreply@bookstores.example", "")

		assert.Error(t, n.Send(context.Background(), reservations.Message{}))
		assert.Empty(t, sender.sent)
	})
}

func TestKafka_Send(t *testing.T) {
	t.Parallel()

	p := &mockPublisher{}
	n := NewKafka(p, "bookstore-reservations")
	n.clock = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	require.NoError(t, n.Send(ctx, testMessage))

	assert.Equal(t, []byte("owner@alpha.com"), p.key)
	assert.Contains(t, p.headers, kafkago.Header{Key: "x-event-type", Value: []byte(reservations.EventNotificationRequested)})

	var env reservations.Envelope
	require.NoError(t, json.Unmarshal(p.value, &env))
	assert.Equal(t, reservations.EventNotificationRequested, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "bookstore-reservations", env.Producer)
	assert.Equal(t, "req-1", env.TraceID)
	assert.NotEmpty(t, env.EventID)

	var payload reservations.NotificationRequestedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, testMessage, payload.Message)
}

func TestKafka_SendError(t *testing.T) {
	t.Parallel()

	cause := errors.New("leader not available")
	n := NewKafka(&mockPublisher{err: cause}, "svc")

	assert.ErrorIs(t, n.Send(context.Background(), testMessage), cause)
}

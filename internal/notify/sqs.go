package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
)

type sqsAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQS enqueues notifications as JSON for a downstream mail worker.
type SQS struct {
	client    sqsAPI
	queueName string
	queueURL  string
	fifo      bool
}

// NewSQS resolves the queue URL once. FIFO queues (name ending in .fifo)
// group messages by recipient.
func NewSQS(ctx context.Context, client sqsAPI, queueName string) (*SQS, error) {
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	resp, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queueName)})
	if err != nil {
		return nil, fmt.Errorf("failed to get SQS queue URL for %s: %w", queueName, err)
	}

	return &SQS{
		client:    client,
		queueName: queueName,
		queueURL:  aws.ToString(resp.QueueUrl),
		fifo:      strings.HasSuffix(queueName, ".fifo"),
	}, nil
}

func (s *SQS) Send(ctx context.Context, m reservations.Message) error {
	if m.To == "" {
		return errors.New("recipient cannot be empty")
	}

	body, err := json.Marshal(m)
	if err != nil {
		return err
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
	}
	if s.fifo {
		input.MessageGroupId = aws.String(m.To)
		input.MessageDeduplicationId = aws.String(uuid.NewString())
	}

	if _, err := s.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send SQS message to %s: %w", s.queueName, err)
	}
	return nil
}

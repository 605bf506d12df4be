package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// RecipientAttribute is the SNS message attribute subscriptions filter on.
const RecipientAttribute = "recipient"

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS publishes each notification to one topic, tagged with the recipient.
type SNS struct {
	client   snsAPI
	topicARN string
}

func NewSNS(client snsAPI, topicARN string) *SNS {
	return &SNS{client: client, topicARN: topicARN}
}

func (s *SNS) Send(ctx context.Context, m reservations.Message) error {
	if m.To == "" {
		return errors.New("recipient cannot be empty")
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(m.Subject),
		Message:  aws.String(m.Body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			RecipientAttribute: {DataType: aws.String("String"), StringValue: aws.String(m.To)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS topic %s: %w", s.topicARN, err)
	}
	return nil
}

package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// API is the subset of the DynamoDB client used by [Store].
type API interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type Option func(*Options)

type Options struct {
	api            API
	consistentRead bool
	endpointURL    string
}

func newOptions() *Options {
	return &Options{}
}

// WithAPI injects a DynamoDB client, typically a mock in tests.
func WithAPI(api API) Option {
	return func(o *Options) {
		o.api = api
	}
}

// WithConsistentRead makes reservation queries strongly consistent.
func WithConsistentRead(enabled bool) Option {
	return func(o *Options) {
		o.consistentRead = enabled
	}
}

// WithEndpointURL points the client at a local DynamoDB or LocalStack.
func WithEndpointURL(url string) Option {
	return func(o *Options) {
		o.endpointURL = url
	}
}

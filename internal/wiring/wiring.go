// Package wiring turns configuration into the store and notifier the
// binaries run with.
package wiring

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-bookstore-reservations/internal/config"
	"github.com/ariefcatur/go-bookstore-reservations/internal/dynamodb"
	kafkax "github.com/ariefcatur/go-bookstore-reservations/internal/kafka"
	"github.com/ariefcatur/go-bookstore-reservations/internal/memory"
	"github.com/ariefcatur/go-bookstore-reservations/internal/notify"
	"github.com/ariefcatur/go-bookstore-reservations/internal/postgres"
	"github.com/ariefcatur/go-bookstore-reservations/internal/redisx"
	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// Cleanup releases what a builder opened. It is never nil.
type Cleanup func()

func noop() {}

func AWSConfig(ctx context.Context, cfg config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.AWSEndpointURL != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
	}
	return awsCfg, nil
}

// Store builds the backend named by cfg.StoreBackend.
func Store(ctx context.Context, cfg config.Config, log *zap.Logger) (reservations.Store, Cleanup, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		s := memory.New()
		for name, email := range cfg.MemoryBookstores {
			s.SetBookstoreEmail(name, email)
		}
		log.Warn("using in-memory store, reservations are lost on restart", zap.Int("bookstores", len(cfg.MemoryBookstores)))
		return s, noop, nil

	case config.StoreDynamoDB:
		s, err := DynamoDB(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("db connect: %w", err)
		}
		return &postgres.Store{DB: pool}, pool.Close, nil

	case config.StoreRedis:
		rdb := redisx.New(cfg.RedisAddr)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		return &redisx.Store{Redis: rdb}, func() { _ = rdb.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// DynamoDB builds a connected DynamoDB store without validating the tables.
func DynamoDB(ctx context.Context, cfg config.Config) (*dynamodb.Store, error) {
	awsCfg, err := AWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := dynamodb.New(&awsCfg, cfg.ReservationsTable, cfg.BookstoresTable, dynamodb.WithEndpointURL(cfg.AWSEndpointURL))
	if err := s.Connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// Notifier builds the transport called name (cfg.Notifier for the API,
// cfg.RelayTransport for the relay).
func Notifier(ctx context.Context, cfg config.Config, name string, log *zap.Logger) (reservations.Notifier, Cleanup, error) {
	switch name {
	case config.NotifierLog:
		return notify.NewLog(log), noop, nil

	case config.NotifierSNS:
		awsCfg, err := AWSConfig(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return notify.NewSNS(sns.NewFromConfig(awsCfg), cfg.SNSTopicARN), noop, nil

	case config.NotifierSQS:
		awsCfg, err := AWSConfig(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		n, err := notify.NewSQS(ctx, sqs.NewFromConfig(awsCfg), cfg.SQSQueueName)
		if err != nil {
			return nil, noop, err
		}
		return n, noop, nil

	case config.NotifierMailerSend:
		return notify.NewMailerSend(cfg.MailerSendAPIKey, cfg.MailerSendFromEmail, cfg.MailerSendFromName), noop, nil

	case config.NotifierKafka:
		p := kafkax.NewProducer(cfg.KafkaBrokers, cfg.KafkaNotifyTopic)
		return notify.NewKafka(p, cfg.ServiceName), func() { _ = p.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown notifier %q", name)
	}
}

package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler returns nil only when the message was processed and its offset may
// be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r       reader
	workers int
	log     *zap.Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // commits are explicit
	})
	return newConsumer(r, workers, log)
}

func newConsumer(r reader, workers int, log *zap.Logger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:          r,
		workers:    workers,
		log:        log,
		minBackoff: 200 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Start fetches messages and fans them out to the worker pool until ctx is
// cancelled. All messages of a partition go to the same worker, so they are
// handled and committed in offset order. A failed handler is retried with
// backoff and its worker does not move on until it succeeds; commits are
// cumulative per partition.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	g, gctx := errgroup.WithContext(ctx)

	jobs := make([]chan kafka.Message, c.workers)
	for i := range jobs {
		ch := make(chan kafka.Message, 1)
		jobs[i] = ch
		g.Go(func() error {
			for m := range ch {
				if err := c.process(gctx, h, m); err != nil {
					// cancelled mid-retry; the offset stays uncommitted and is redelivered
					return nil
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, ch := range jobs {
				close(ch)
			}
		}()
		for {
			m, err := c.r.FetchMessage(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return err
			}
			select {
			case jobs[m.Partition%c.workers] <- m:
			case <-gctx.Done():
				return nil
			}
		}
	})

	return g.Wait()
}

// process runs h until it succeeds, then commits m. It returns only the
// context error.
func (c *Consumer) process(ctx context.Context, h Handler, m kafka.Message) error {
	log := c.log.With(zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset))
	delay := c.minBackoff
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("handler failed, retrying", zap.Int("attempt", attempt), zap.Duration("backoff", delay), zap.Error(err))

		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
		if delay *= 2; delay > c.maxBackoff {
			delay = c.maxBackoff
		}
	}

	if err := c.r.CommitMessages(ctx, m); err != nil {
		log.Warn("commit failed", zap.Error(err))
	}
	return nil
}

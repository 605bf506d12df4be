// Package relay delivers NotificationRequested events read from Kafka.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kafkax "github.com/ariefcatur/go-bookstore-reservations/internal/kafka"
	"github.com/ariefcatur/go-bookstore-reservations/internal/redisx"
	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Service struct {
	Redis       redis.Cmdable
	Transport   reservations.Notifier
	Log         *zap.Logger
	ServiceName string
}

const (
	claimPending   = "pending"
	claimDelivered = "delivered"
)

// ErrInFlight is returned when another worker holds the claim on the same
// event. The consumer retries the message later.
var ErrInFlight = errors.New("notification is being delivered by another worker")

// HandleNotificationRequested is installed as the consumer handler. Events of
// other types and undecodable messages are skipped.
//
// Before sending, the handler claims the event ID with SETNX for
// redisx.TTLClaim. A successful send turns the claim into a delivery record
// kept for redisx.TTLDedup; a failed send releases it. Redis being down
// degrades to at-least-once delivery.
func (s *Service) HandleNotificationRequested(ctx context.Context, m kafkago.Message) error {
	var env reservations.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.Error("dropping undecodable message", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != reservations.EventNotificationRequested {
		return nil
	}

	log := s.Log.With(zap.String("event_id", env.EventID), zap.String("trace_id", env.TraceID))

	p, err := kafkax.UnwrapPayload[reservations.NotificationRequestedPayload](env.Payload)
	if err != nil {
		log.Error("dropping event with bad payload", zap.Error(err))
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	claimed, err := s.Redis.SetNX(ctx, dkey, claimPending, redisx.TTLClaim).Result()
	switch {
	case err != nil:
		log.Warn("dedup claim failed, delivering anyway", zap.Error(err))
	case !claimed:
		state, err := s.Redis.Get(ctx, dkey).Result()
		if errors.Is(err, redis.Nil) {
			// claim released between SETNX and GET
			return ErrInFlight
		}
		if err != nil {
			return fmt.Errorf("read dedup state %s: %w", env.EventID, err)
		}
		if state == claimDelivered {
			log.Debug("already delivered")
			return nil
		}
		return ErrInFlight
	}

	if err := s.Transport.Send(ctx, p.Message); err != nil {
		if claimed {
			if derr := s.Redis.Del(context.WithoutCancel(ctx), dkey).Err(); derr != nil {
				log.Warn("failed to release dedup claim", zap.Error(derr))
			}
		}
		return fmt.Errorf("deliver %s: %w", env.EventID, err)
	}

	if err := s.Redis.Set(ctx, dkey, claimDelivered, redisx.TTLDedup).Err(); err != nil {
		log.Warn("failed to record delivery", zap.Error(err))
	}
	log.Info("notification delivered", zap.String("subject", p.Subject))
	return nil
}

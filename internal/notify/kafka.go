package notify

import (
	"context"
	"time"

	kafkax "github.com/ariefcatur/go-bookstore-reservations/internal/kafka"
	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type publisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafkago.Header) error
}

// Kafka hands notifications to the relay as NotificationRequested events.
// Send returns once the broker has acknowledged the write.
type Kafka struct {
	p       publisher
	service string
	clock   func() time.Time
}

func NewKafka(p publisher, service string) *Kafka {
	return &Kafka{p: p, service: service, clock: time.Now}
}

func (k *Kafka) Send(ctx context.Context, m reservations.Message) error {
	ev := reservations.Envelope{
		EventID:      uuid.NewString(),
		EventType:    reservations.EventNotificationRequested,
		EventVersion: 1,
		OccurredAt:   k.clock().UTC(),
		Producer:     k.service,
		TraceID:      middleware.GetReqID(ctx),
		Payload:      kafkax.MustMarshal(reservations.NotificationRequestedPayload{Message: m}),
	}

	return k.p.Publish(ctx, reservations.PartitionKey(m.To), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(reservations.EventNotificationRequested)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

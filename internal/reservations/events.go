package reservations

import (
	"encoding/json"
	"time"
)

const (
	EventNotificationRequested = "NotificationRequested"

	TopicNotificationRequested = "bookstore.notification.requested"
)

// Envelope wraps every event written to Kafka.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	TraceID      string          `json:"trace_id,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

// NotificationRequestedPayload carries one message for the relay to deliver.
type NotificationRequestedPayload struct {
	Message
}

// PartitionKey keeps all messages for one recipient on the same partition.
func PartitionKey(recipient string) []byte { return []byte(recipient) }

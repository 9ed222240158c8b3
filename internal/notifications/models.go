package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OrderEventType enumerates the order lifecycle events published to Kafka.
type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventPaid          OrderEventType = "order.paid"
	OrderEventPaymentFailed OrderEventType = "payment.failed"
)

// OrderEvent is the message body for order lifecycle notifications.
// Downstream consumers (email, analytics) key off Type.
type OrderEvent struct {
	ID         uuid.UUID         `json:"id"`
	Type       OrderEventType    `json:"type"`
	OrderID    uuid.UUID         `json:"order_id"`
	EventID    uuid.UUID         `json:"event_id"`
	UserID     uuid.UUID         `json:"user_id"`
	UserEmail  string            `json:"user_email,omitempty"`
	TotalCents int64             `json:"total_cents"`
	Currency   string            `json:"currency"`
	Provider   string            `json:"provider,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewOrderEvent builds an event with identity and timestamp filled in.
func NewOrderEvent(eventType OrderEventType, orderID, eventID, userID uuid.UUID) *OrderEvent {
	return &OrderEvent{
		ID:         uuid.New(),
		Type:       eventType,
		OrderID:    orderID,
		EventID:    eventID,
		UserID:     userID,
		OccurredAt: time.Now(),
	}
}

// ToJSON serializes the event for the wire.
func (e *OrderEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events for one order to the same partition so
// consumers see them in order.
func (e *OrderEvent) PartitionKey() string {
	return e.OrderID.String()
}

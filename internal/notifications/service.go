package notifications

import (
	"context"

	"github.com/google/uuid"

	"ticketflow/pkg/logger"
)

// Publisher is the interface the order flow publishes through. A nil-safe
// no-op implementation backs deployments without Kafka.
type Publisher interface {
	OrderCreated(ctx context.Context, orderID, eventID, userID uuid.UUID, email string, totalCents int64, currency string)
	OrderPaid(ctx context.Context, orderID, eventID, userID uuid.UUID, email string, totalCents int64, currency, provider string)
	PaymentFailed(ctx context.Context, orderID, eventID, userID uuid.UUID, email, provider, reason string)
}

type publisher struct {
	producer OrderEventProducer
	log      *logger.Logger
}

// NewPublisher wraps a producer with typed publish helpers. Publish failures
// are logged, not propagated: a Kafka outage must not block checkout.
func NewPublisher(producer OrderEventProducer, log *logger.Logger) Publisher {
	return &publisher{producer: producer, log: log}
}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (p *publisher) OrderCreated(ctx context.Context, orderID, eventID, userID uuid.UUID, email string, totalCents int64, currency string) {
	event := NewOrderEvent(OrderEventCreated, orderID, eventID, userID)
	event.UserEmail = email
	event.TotalCents = totalCents
	event.Currency = currency
	p.publish(ctx, event)
}

func (p *publisher) OrderPaid(ctx context.Context, orderID, eventID, userID uuid.UUID, email string, totalCents int64, currency, provider string) {
	event := NewOrderEvent(OrderEventPaid, orderID, eventID, userID)
	event.UserEmail = email
	event.TotalCents = totalCents
	event.Currency = currency
	event.Provider = provider
	p.publish(ctx, event)
}

func (p *publisher) PaymentFailed(ctx context.Context, orderID, eventID, userID uuid.UUID, email, provider, reason string) {
	event := NewOrderEvent(OrderEventPaymentFailed, orderID, eventID, userID)
	event.UserEmail = email
	event.Provider = provider
	event.Metadata = map[string]string{"reason": reason}
	p.publish(ctx, event)
}

func (p *publisher) publish(ctx context.Context, event *OrderEvent) {
	if err := p.producer.PublishOrderEvent(ctx, event); err != nil {
		p.log.Error("Failed to publish order event",
			"error", err,
			"type", string(event.Type),
			"order_id", event.OrderID.String(),
		)
	}
}

type noopPublisher struct{}

func (noopPublisher) OrderCreated(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, string, int64, string) {
}
func (noopPublisher) OrderPaid(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, string, int64, string, string) {
}
func (noopPublisher) PaymentFailed(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, string, string, string) {
}

package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"ticketflow/pkg/logger"
)

// OrderEventHandler reacts to a consumed order event. Handlers must be
// idempotent; redelivery after a consumer crash replays events.
type OrderEventHandler interface {
	HandleOrderEvent(ctx context.Context, event *OrderEvent) error
}

// ConsumerConfig configures the order event consumer group.
type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topics           []string
	SessionTimeoutMs int
	HeartbeatMs      int
	OffsetOldest     bool
}

func DefaultConsumerConfig(brokers []string) *ConsumerConfig {
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}
	return &ConsumerConfig{
		Brokers:          brokers,
		GroupID:          "ticketflow-order-workers",
		Topics:           []string{"order-events"},
		SessionTimeoutMs: 30000,
		HeartbeatMs:      3000,
		OffsetOldest:     false,
	}
}

// OrderEventConsumer consumes order events off Kafka and feeds them to a
// handler.
type OrderEventConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	handler       OrderEventHandler
	log           *logger.Logger
	cancel        context.CancelFunc
}

func NewOrderEventConsumer(config *ConsumerConfig, handler OrderEventHandler, log *logger.Logger) (*OrderEventConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &OrderEventConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		handler:       handler,
		log:           log,
	}, nil
}

// Start runs the consumer loop until the context is cancelled.
func (c *OrderEventConsumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.consumerGroup.Errors() {
			c.log.Error("Consumer group error", "error", err)
		}
	}()

	go func() {
		handler := &orderEventGroupHandler{handler: c.handler, log: c.log}
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
					c.log.Error("Error consuming order events", "error", err)
					time.Sleep(time.Second)
				}
			}
		}
	}()
}

func (c *OrderEventConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type orderEventGroupHandler struct {
	handler OrderEventHandler
	log     *logger.Logger
}

func (h *orderEventGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *orderEventGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *orderEventGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			var event OrderEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				h.log.Error("Failed to unmarshal order event", "error", err, "offset", message.Offset)
				session.MarkMessage(message, "")
				continue
			}

			if err := h.handler.HandleOrderEvent(session.Context(), &event); err != nil {
				h.log.Error("Failed to handle order event",
					"error", err,
					"type", string(event.Type),
					"order_id", event.OrderID.String(),
				)
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

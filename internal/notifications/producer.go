package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"ticketflow/pkg/logger"
)

// OrderEventProducer publishes order lifecycle events.
type OrderEventProducer interface {
	PublishOrderEvent(ctx context.Context, event *OrderEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka order event producer
type KafkaProducerConfig struct {
	Brokers          []string
	OrderTopic       string
	DeadLetterTopic  string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig(brokers []string) *KafkaProducerConfig {
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}
	return &KafkaProducerConfig{
		Brokers:          brokers,
		OrderTopic:       "order-events",
		DeadLetterTopic:  "order-events-dlq",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// KafkaOrderEventProducer publishes order events to Kafka with idempotent
// writes, so producer retries cannot duplicate an event.
type KafkaOrderEventProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

// NewKafkaOrderEventProducer creates a new Kafka order event producer
func NewKafkaOrderEventProducer(config *KafkaProducerConfig, log *logger.Logger) (OrderEventProducer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	// Idempotent writes require a single in-flight request
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps per-order ordering
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaOrderEventProducer{
		producer: producer,
		config:   config,
		log:      log,
	}, nil
}

// PublishOrderEvent publishes a single order event to Kafka. Events that
// cannot be delivered after retries are parked on the dead letter topic.
func (p *KafkaOrderEventProducer) PublishOrderEvent(ctx context.Context, event *OrderEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.OrderTopic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   p.createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.sendToDeadLetter(message)
		return fmt.Errorf("failed to send order event to Kafka: %w", err)
	}

	p.log.InfoContext(ctx, "Order Event Published",
		"topic", p.config.OrderTopic,
		"partition", partition,
		"offset", offset,
		"type", string(event.Type),
		"order_id", event.OrderID.String(),
	)
	return nil
}

func (p *KafkaOrderEventProducer) createHeaders(event *OrderEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("order_id"), Value: []byte(event.OrderID.String())},
		{Key: []byte("producer"), Value: []byte("ticketflow-orders")},
		{Key: []byte("version"), Value: []byte("1.0")},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}
}

func (p *KafkaOrderEventProducer) sendToDeadLetter(original *sarama.ProducerMessage) {
	dlqMessage := &sarama.ProducerMessage{
		Topic:   p.config.DeadLetterTopic,
		Key:     original.Key,
		Value:   original.Value,
		Headers: original.Headers,
	}
	if _, _, err := p.producer.SendMessage(dlqMessage); err != nil {
		p.log.Error("Failed to park order event on dead letter topic", "error", err)
	}
}

// Close closes the Kafka producer
func (p *KafkaOrderEventProducer) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

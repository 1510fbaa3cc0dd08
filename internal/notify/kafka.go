package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// KafkaNotifier publishes delivery-status events to a Kafka topic, keyed by
// shipment name so events for one shipment stay ordered.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	logger   *otelzap.Logger
}

// NewKafkaNotifier connects a synchronous producer to the given brokers.
func NewKafkaNotifier(brokers []string, topic string, logger *otelzap.Logger) (*KafkaNotifier, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	return &KafkaNotifier{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

// DeliveryStatusChanged publishes one JSON event.
func (n *KafkaNotifier) DeliveryStatusChanged(ctx context.Context, event DeliveryStatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	partition, offset, err := n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(event.Shipment),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("publishing delivery status event: %w", err)
	}

	n.logger.Debug("Published delivery status event",
		zap.String("shipment", event.Shipment),
		zap.String("current_status", event.CurrentStatus),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close shuts down the producer.
func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}

var _ Notifier = (*KafkaNotifier)(nil)

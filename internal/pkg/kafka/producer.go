package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkout/internal/entities"
	"checkout/internal/pkg/config"
	"checkout/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Publisher queues webhook notifications for the notification worker.
type Publisher struct {
	log      logger.Logger
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

func NewPublisher(ctx context.Context, log logger.Logger, cfg *config.Kafka) (*Publisher, error) {
	saramaConfig, err := newSaramaConfig(cfg.Sarama.Version)
	if err != nil {
		return nil, err
	}
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	brokers := cfg.BrokerList()
	kafkaLog := log.With(
		logger.NewField("brokers", brokers),
		logger.NewField("topic", cfg.Topic),
	)

	if err := waitForTopic(ctx, kafkaLog, brokers, cfg.Topic, saramaConfig); err != nil {
		return nil, fmt.Errorf("kafka connection: %w", err)
	}

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create sync producer: %w", err)
	}

	return NewPublisherWithProducer(kafkaLog, producer, cfg.Topic), nil
}

func NewPublisherWithProducer(log logger.Logger, producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{
		log:      log,
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

// HandleNotification publishes the notification keyed by its resource, so
// updates for one payment stay ordered within a partition.
func (p *Publisher) HandleNotification(ctx context.Context, n entities.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := NotificationEvent{
		EventID:    uuid.NewString(),
		Topic:      string(n.Topic),
		ResourceID: n.ResourceID,
		Action:     n.Action,
		RequestID:  n.RequestID,
		ReceivedAt: p.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode notification event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Topic + ":" + event.ResourceID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(event.EventID)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish notification %s: %w", event.EventID, err)
	}

	p.log.Info("notification queued",
		logger.NewField("event_id", event.EventID),
		logger.NewField("resource_id", event.ResourceID),
		logger.NewField("partition", partition),
		logger.NewField("offset", offset),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}

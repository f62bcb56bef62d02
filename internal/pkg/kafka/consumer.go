package kafka

import (
	"context"
	"errors"
	"fmt"

	"checkout/internal/pkg/config"
	"checkout/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer runs one handler over the notification topic as a consumer group.
type Consumer struct {
	log     logger.Logger
	group   sarama.ConsumerGroup
	topic   string
	handler sarama.ConsumerGroupHandler
}

func NewConsumer(ctx context.Context, log logger.Logger, cfg *config.Kafka, handler sarama.ConsumerGroupHandler) (*Consumer, error) {
	saramaConfig, err := newSaramaConfig(cfg.Sarama.Version)
	if err != nil {
		return nil, err
	}
	// Offsets are marked by the handler only after a notification is settled.
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = cfg.Sarama.ConsumerOffsetsAutocommit
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{
		sarama.NewBalanceStrategySticky(),
	}

	brokers := cfg.BrokerList()
	kafkaLog := log.With(
		logger.NewField("brokers", brokers),
		logger.NewField("group", cfg.ConsumerGroup),
		logger.NewField("topic", cfg.Topic),
	)

	if err := waitForTopic(ctx, kafkaLog, brokers, cfg.Topic, saramaConfig); err != nil {
		return nil, fmt.Errorf("kafka connection: %w", err)
	}

	group, err := sarama.NewConsumerGroup(brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create consumer group %s: %w", cfg.ConsumerGroup, err)
	}

	return &Consumer{
		log:     kafkaLog,
		group:   group,
		topic:   cfg.Topic,
		handler: handler,
	}, nil
}

// Start re-joins the group after every rebalance and returns when ctx is
// cancelled or the group is closed.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info("payment notification consumer starting")

	for {
		err := c.group.Consume(ctx, []string{c.topic}, c.handler)
		switch {
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			c.log.Info("consumer group closed")
			return nil
		case err != nil:
			c.log.Error("consume notifications", logger.NewField("error", err))
			return fmt.Errorf("consume %s: %w", c.topic, err)
		}

		if ctx.Err() != nil {
			c.log.Info("consumer stopping", logger.NewField("reason", ctx.Err()))
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

package kafka

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"checkout/pkg/logger"
	retrierconfig "checkout/pkg/retrier"
	"checkout/pkg/retrier/backoff_adapter"

	"github.com/IBM/sarama"
)

const (
	connectInitialInterval = 1 * time.Second
	connectMaxInterval     = 30 * time.Second
	connectMaxElapsedTime  = 2 * time.Minute
	connectRandomization   = 0.5
	connectMultiplier      = 2
)

var errTopicMissing = errors.New("topic not found on brokers")

func newSaramaConfig(version string) (*sarama.Config, error) {
	kafkaVersion, err := sarama.ParseKafkaVersion(version)
	if err != nil {
		return nil, fmt.Errorf("parse kafka version %q: %w", version, err)
	}

	cfg := sarama.NewConfig()
	cfg.ClientID = "checkout-service"
	cfg.Version = kafkaVersion
	return cfg, nil
}

// waitForTopic blocks until the brokers answer and list the notification
// topic. Both the publisher and the worker refuse to start without it.
func waitForTopic(ctx context.Context, log logger.Logger, brokers []string, topic string, cfg *sarama.Config) error {
	retrier := backoff_adapter.New(retrierconfig.Config{
		InitialInterval: connectInitialInterval,
		MaxInterval:     connectMaxInterval,
		MaxElapsedTime:  connectMaxElapsedTime,
		Randomization:   connectRandomization,
		Multiplier:      connectMultiplier,
	})

	var attempt uint64
	err := retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		attempt++
		client, err := sarama.NewClient(brokers, cfg)
		if err != nil {
			log.Warn("kafka brokers unavailable",
				logger.NewField("attempt", attempt),
				logger.NewField("error", err),
			)
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("close kafka topic check client", logger.NewField("error", err))
			}
		}()

		topics, err := client.Topics()
		if err != nil {
			return err
		}
		if !slices.Contains(topics, topic) {
			return fmt.Errorf("%w: %s", errTopicMissing, topic)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("wait for topic %s after %d attempts: %w", topic, attempt, err)
	}

	log.Info("kafka topic available", logger.NewField("attempts", attempt))
	return nil
}

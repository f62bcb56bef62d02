package payment_notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"checkout/internal/entities"
	"checkout/internal/pkg/kafka"
	notificationservice "checkout/internal/service/notification"
	"checkout/pkg/logger"
	retrierconfig "checkout/pkg/retrier"
	"checkout/pkg/retrier/backoff_adapter"

	"github.com/IBM/sarama"
)

const (
	retryMaxInterval   = 30 * time.Second
	retryRandomization = 0.5
	retryMultiplier    = 2.0
)

type Config struct {
	// ProcessTimeout bounds a single processing attempt.
	ProcessTimeout time.Duration
	RetryInterval  time.Duration
	// RetryFor bounds how long transient failures are retried before the
	// message is committed anyway. Zero disables retries.
	RetryFor time.Duration
}

type Handler struct {
	notificationService      Service
	log                      handlerLogger
	messageProcessingTimeout time.Duration
	retrier                  retrierconfig.Retrier
}

func New(log handlerLogger, notificationService Service, cfg Config) *Handler {
	handlerLog := log.With()

	return &Handler{
		notificationService:      notificationService,
		log:                      handlerLog,
		messageProcessingTimeout: cfg.ProcessTimeout,
		retrier: backoff_adapter.New(retrierconfig.Config{
			InitialInterval: cfg.RetryInterval,
			MaxInterval:     max(retryMaxInterval, cfg.RetryInterval),
			MaxElapsedTime:  cfg.RetryFor,
			Randomization:   retryRandomization,
			Multiplier:      retryMultiplier,
			ShouldRetry: func(err error) bool {
				return cfg.RetryFor > 0 && !permanent(err)
			},
		}),
	}
}

// permanent errors would fail the same way on every attempt.
func permanent(err error) bool {
	return errors.Is(err, notificationservice.ErrUndefinedTopic) ||
		errors.Is(err, notificationservice.ErrEmptyResource) ||
		errors.Is(err, entities.ErrPaymentNotFound) ||
		errors.Is(err, entities.ErrOrderNotFound) ||
		errors.Is(err, entities.ErrReferenceMismatch) ||
		errors.Is(err, entities.ErrPaymentConflict) ||
		errors.Is(err, context.Canceled)
}

func (h *Handler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				h.log.Info("payment.notification: claim.Messages() closed, exiting ConsumeClaim")
				return nil
			}

			shouldExit := h.messageProcessing(sess, message)
			if shouldExit {
				return nil
			}

		case <-sess.Context().Done():
			h.log.Info("payment.notification: session context done, exiting ConsumeClaim")
			return nil
		}
	}
}

// messageProcessing handles one message. It returns true when the session is
// going away and the message must stay uncommitted for redelivery.
func (h *Handler) messageProcessing(sess sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) bool {
	var event kafka.NotificationEvent
	err := json.Unmarshal(message.Value, &event)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("payment.notification handler received bad message")
		sess.MarkMessage(message, "")
		return false
	}

	msgLog := h.log.With(
		logger.NewField("event_id", event.EventID),
		logger.NewField("topic", event.Topic),
		logger.NewField("resource_id", event.ResourceID),
		logger.NewField("offset", message.Offset),
	)

	msgLog.Info("payment.notification processing")

	attempt := 0
	err = h.retrier.ExecuteWithContext(sess.Context(), func(ctx context.Context) error {
		attempt++
		ctx, cancel := context.WithTimeout(ctx, h.messageProcessingTimeout)
		defer cancel()

		err := h.notificationService.HandleNotification(ctx, event.ToDomain())
		if err != nil && !permanent(err) {
			msgLog.With(
				logger.NewField("attempt", attempt),
				logger.NewField("error", err),
			).Warn("payment.notification attempt failed")
		}
		return err
	})
	if err != nil {
		switch {
		case sess.Context().Err() != nil:
			msgLog.With(
				logger.NewField("error", err),
			).Warn("payment.notification session closed, message will be reprocessed")
			return true

		case errors.Is(err, notificationservice.ErrUndefinedTopic),
			errors.Is(err, notificationservice.ErrEmptyResource):
			msgLog.With(
				logger.NewField("error", err),
			).Warn("payment.notification handler skipped notification")

		case errors.Is(err, entities.ErrPaymentNotFound),
			errors.Is(err, entities.ErrOrderNotFound),
			errors.Is(err, entities.ErrReferenceMismatch),
			errors.Is(err, entities.ErrPaymentConflict):
			msgLog.With(
				logger.NewField("error", err),
			).Warn("payment.notification handler: nothing to reconcile")

		default:
			msgLog.With(
				logger.NewField("attempts", attempt),
				logger.NewField("error", err),
			).Error("payment.notification handler failed to process notification")
		}
		sess.MarkMessage(message, "")
		return false
	}

	msgLog.Info("payment.notification: processed")

	sess.MarkMessage(message, "")
	return false
}

package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"checkout/internal/entities"
	"checkout/internal/pkg/metrics"
)

type Service struct {
	factory HandlerFactory
}

func New(factory HandlerFactory) *Service {
	return &Service{
		factory: factory,
	}
}

// HandleNotification routes a gateway notification to the handler of its topic.
func (s *Service) HandleNotification(ctx context.Context, n entities.Notification) error {
	resourceID := strings.TrimSpace(n.ResourceID)
	if resourceID == "" {
		metrics.NotificationsTotal.WithLabelValues(string(n.Topic), "invalid").Inc()
		return ErrEmptyResource
	}

	handler, err := s.factory.GetHandler(n.Topic)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(n.Topic), "ignored").Inc()
		return err
	}

	if err := handler(ctx, resourceID); err != nil {
		result := "failed"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result = "cancelled"
		}
		metrics.NotificationsTotal.WithLabelValues(string(n.Topic), result).Inc()
		return fmt.Errorf("handle %s %s: %w", n.Topic, resourceID, err)
	}

	metrics.NotificationsTotal.WithLabelValues(string(n.Topic), "processed").Inc()
	return nil
}

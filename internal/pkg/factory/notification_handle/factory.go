package notification_handle

import (
	"context"
	"errors"
	"fmt"

	"checkout/internal/entities"
	"checkout/internal/service/notification"
)

type TopicHandlerFactory struct {
	reconciler notification.Reconciler
	gateway    notification.MerchantOrderGateway
}

func NewTopicHandlerFactory(reconciler notification.Reconciler, gateway notification.MerchantOrderGateway) *TopicHandlerFactory {
	return &TopicHandlerFactory{
		reconciler: reconciler,
		gateway:    gateway,
	}
}

func (f *TopicHandlerFactory) GetHandler(topic entities.NotificationTopic) (notification.ExecuteFn, error) {
	switch topic {
	case entities.TopicPayment:
		return f.paymentHandler, nil
	case entities.TopicMerchantOrder:
		return f.merchantOrderHandler, nil
	default:
		return nil, fmt.Errorf("%w: %s", notification.ErrUndefinedTopic, topic)
	}
}

func (f *TopicHandlerFactory) paymentHandler(ctx context.Context, paymentID string) error {
	_, err := f.reconciler.Reconcile(ctx, entities.PaymentReference{PaymentID: paymentID})
	if err != nil {
		return fmt.Errorf("reconcile payment %s: %w", paymentID, err)
	}
	return nil
}

// merchantOrderHandler reconciles every payment attached to the merchant order.
// One failing payment does not stop the others.
func (f *TopicHandlerFactory) merchantOrderHandler(ctx context.Context, merchantOrderID string) error {
	merchantOrder, err := f.gateway.GetMerchantOrder(ctx, merchantOrderID)
	if err != nil {
		return fmt.Errorf("get merchant order %s: %w", merchantOrderID, err)
	}

	var errs []error
	for _, p := range merchantOrder.Payments {
		_, err := f.reconciler.Reconcile(ctx, entities.PaymentReference{
			PaymentID:         p.ID,
			ExternalReference: merchantOrder.ExternalReference,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("reconcile payment %s of merchant order %s: %w", p.ID, merchantOrderID, err))
		}
	}
	return errors.Join(errs...)
}

//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=notification_test
package notification

import (
	"context"

	"checkout/internal/entities"
)

type ExecuteFn func(ctx context.Context, resourceID string) error

type HandlerFactory interface {
	GetHandler(topic entities.NotificationTopic) (ExecuteFn, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, ref entities.PaymentReference) (*entities.ReconciliationResult, error)
}

type MerchantOrderGateway interface {
	GetMerchantOrder(ctx context.Context, merchantOrderID string) (*entities.MerchantOrder, error)
}

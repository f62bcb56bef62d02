//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=reconciliation_test
package reconciliation

import (
	"context"
	"time"

	"checkout/internal/entities"
	"checkout/pkg/logger"
)

type PaymentGateway interface {
	GetPayment(ctx context.Context, paymentID string) (*entities.Payment, error)
	SearchPayments(ctx context.Context, externalReference string) ([]entities.Payment, error)
}

type OrderStore interface {
	GetByID(ctx context.Context, id int64) (*entities.Order, error)
	Resolve(ctx context.Context, externalReference string, payment *entities.Payment) (*entities.Order, error)
	Update(ctx context.Context, modify entities.OrderModify) (*entities.Order, error)
	ClaimFulfillment(ctx context.Context, id int64, from entities.FulfillmentStatusType) (bool, error)
	ReclaimFulfillment(ctx context.Context, id int64, lease time.Duration) (bool, error)
	FinishFulfillment(ctx context.Context, id int64, sent bool) error
	ListStale(ctx context.Context, filter entities.StaleOrderFilter) ([]entities.Order, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, order *entities.Order) bool
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type serviceLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

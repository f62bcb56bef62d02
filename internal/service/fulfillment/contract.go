//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=fulfillment_test
package fulfillment

import (
	"context"

	"checkout/internal/entities"
	"checkout/pkg/logger"
)

type Mailer interface {
	Send(ctx context.Context, email entities.Email) error
}

type dispatcherLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=payments_resend_email_post_test
package payments_resend_email_post

import (
	"context"

	"checkout/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Service interface {
	ResendFulfillment(ctx context.Context, orderID int64, token string) (bool, error)
}

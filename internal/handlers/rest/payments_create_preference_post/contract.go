//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=payments_create_preference_post_test
package payments_create_preference_post

import (
	"context"

	"checkout/internal/entities"
	"checkout/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Service interface {
	CreatePreference(ctx context.Context, req entities.CheckoutRequest) (*entities.Checkout, error)
}

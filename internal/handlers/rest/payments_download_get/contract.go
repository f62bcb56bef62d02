//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=payments_download_get_test
package payments_download_get

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
	GetDownload(ctx context.Context, orderID int64, token string) (*entities.Download, error)
}

//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=order_test
package order

import (
	"context"

	"checkout/internal/entities"
)

type OrderStore interface {
	Create(ctx context.Context, order *entities.Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*entities.Order, error)
	Update(ctx context.Context, modify entities.OrderModify) (*entities.Order, error)
}

type PaymentGateway interface {
	CreatePreference(ctx context.Context, order *entities.Order, urls entities.ReturnURLs) (*entities.Preference, error)
}

type Catalog interface {
	HasProduct(courseID string) bool
	Artifacts(courseID string) ([]entities.Attachment, error)
}

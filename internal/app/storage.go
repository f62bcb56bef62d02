package app

import (
	"context"
	"time"

	"checkout/internal/repository/metadata"
	orderRepo "checkout/internal/repository/order"
	orderService "checkout/internal/service/order"
	"checkout/internal/service/reconciliation"
	"checkout/pkg/querier"
	"checkout/pkg/tx"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the order persistence shared by checkout and reconciliation.
type Store interface {
	orderService.OrderStore
	reconciliation.OrderStore
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Storage is the store mode selected at startup.
type Storage struct {
	Store     Store
	TxManager TxManager
}

func NewPostgresStorage(pool *pgxpool.Pool) Storage {
	return Storage{
		Store:     orderRepo.New(querier.New(pool, pgxv5.DefaultCtxGetter)),
		TxManager: tx.New(pool),
	}
}

// NewMetadataStorage keeps no database. claimTTL bounds how long fulfillment
// claims are remembered in process memory.
func NewMetadataStorage(claimTTL time.Duration) Storage {
	return Storage{
		Store:     metadata.New(claimTTL),
		TxManager: tx.NewNop(),
	}
}

package integration_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"checkout/internal/pkg/config"
	"checkout/internal/pkg/postgres"
	"checkout/pkg/logger/zap_adapter"
	"checkout/pkg/querier"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

var (
	poolInstance    *pgxpool.Pool
	querierInstance *querier.Querier
	querierOnce     sync.Once
)

// GetQuerier connects using POSTGRES_* from the environment (exported by the Makefile)
// and applies the embedded migrations once per test binary.
func GetQuerier() *querier.Querier {
	querierOnce.Do(func() {
		cfg := &config.Config{
			Database: config.Database{
				Host:     os.Getenv("POSTGRES_HOST"),
				Port:     os.Getenv("POSTGRES_PORT"),
				User:     os.Getenv("POSTGRES_USER"),
				Password: os.Getenv("POSTGRES_PASSWORD"),
				DBName:   os.Getenv("POSTGRES_DB"),
				SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
			},
			Store: config.Store{
				Mode:           config.StorePostgres,
				MigrateOnStart: true,
			},
		}

		pool, err := postgres.NewConnPool(context.Background(), zap_adapter.NewNopAdapter(), cfg)
		if err != nil {
			panic(err)
		}

		poolInstance = pool
		querierInstance = querier.New(pool, pgxv5.DefaultCtxGetter)
	})

	return querierInstance
}

// GetPool returns the pool behind GetQuerier, for transaction manager tests.
func GetPool() *pgxpool.Pool {
	GetQuerier()
	return poolInstance
}

func SetupDB(t *testing.T, setupSql string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := GetQuerier().Exec(ctx, setupSql)
	require.NoError(t, err)
}

func TeardownDB(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := GetQuerier().Exec(ctx, `TRUNCATE TABLE orders RESTART IDENTITY CASCADE;`)
	require.NoError(t, err)
}

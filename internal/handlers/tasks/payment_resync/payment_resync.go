//go:generate mockgen -source=payment_resync.go -destination=./payment_resync_mocks_test.go -package=payment_resync_test
package payment_resync

import (
	"context"
	"time"
)

type Service interface {
	ResyncStale(ctx context.Context) error
}

// PaymentResync polls the gateway for orders whose webhook never arrived.
type PaymentResync struct {
	service  Service
	interval time.Duration
}

func NewPaymentResync(service Service, interval time.Duration) *PaymentResync {
	return &PaymentResync{
		service:  service,
		interval: interval,
	}
}

func (p *PaymentResync) TTL() time.Duration {
	return p.interval
}

// Do bounds one pass by the interval so a slow gateway never overlaps runs.
func (p *PaymentResync) Do(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	return p.service.ResyncStale(ctxWithTimeout)
}

func (p *PaymentResync) Info() string {
	return "payment resync"
}

// Package metadata is the stateless order store. Orders live in the payment
// gateway's preference metadata and are rebuilt from the fetched payment.
// Recently seen orders and their fulfillment claims are kept in process
// memory for a bounded TTL, so the at-most-once guarantee holds per instance.
package metadata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"checkout/internal/entities"
)

type entry struct {
	order  entities.Order
	expiry time.Time
}

// idSpread keeps ids below 2^53 so browsers read them back exactly.
const idSpread = 1000

type Repository struct {
	mu      sync.Mutex
	entries map[int64]*entry
	ttl     time.Duration
	lastMs  int64
	salt    int64
	now     func() time.Time
}

func New(ttl time.Duration) *Repository {
	return &Repository{
		entries: make(map[int64]*entry),
		ttl:     ttl,
		salt:    rand.Int64N(idSpread),
		now:     time.Now,
	}
}

// Create derives a strictly increasing id from the wall clock in milliseconds,
// suffixed with a per-instance salt so replicas rarely mint the same id.
func (r *Repository) Create(_ context.Context, order *entities.Order) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	ms := max(now.UnixMilli(), r.lastMs+1)
	r.lastMs = ms
	id := ms*idSpread + r.salt

	stored := *order
	stored.ID = id
	stored.Status = entities.OrderPending
	stored.Fulfillment = entities.FulfillmentNone
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Product.Quantity == 0 {
		stored.Product.Quantity = 1
	}
	r.putLocked(&stored)
	r.cleanupExpiredLocked()

	return id, nil
}

func (r *Repository) GetByID(context.Context, int64) (*entities.Order, error) {
	return nil, entities.ErrStoreUnsupported
}

// Resolve returns the cached order when this instance has seen it, otherwise
// rebuilds a pending order from the payment metadata.
func (r *Repository) Resolve(_ context.Context, externalReference string, payment *entities.Payment) (*entities.Order, error) {
	var meta map[string]string
	if payment != nil {
		meta = payment.Metadata
	}

	id, err := orderID(externalReference, meta)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.getLocked(id); ok {
		order := e.order
		return &order, nil
	}

	order, err := entities.OrderFromMetadata(id, meta)
	if err != nil {
		return nil, err
	}
	now := r.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.putLocked(order)

	res := *order
	return &res, nil
}

func (r *Repository) Update(_ context.Context, modify entities.OrderModify) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.getLocked(modify.ID)
	if !ok {
		return nil, entities.ErrOrderNotFound
	}
	if modify.Version != nil && *modify.Version != e.order.Version {
		return nil, entities.ErrConflict
	}

	if modify.Status != nil {
		e.order.Status = *modify.Status
	}
	if modify.PaymentID != nil {
		e.order.PaymentID = modify.PaymentID
	}
	if modify.PreferenceID != nil && e.order.PreferenceID == nil {
		e.order.PreferenceID = modify.PreferenceID
	}
	e.order.Version++
	e.order.UpdatedAt = r.now()
	e.expiry = e.order.UpdatedAt.Add(r.ttl)

	order := e.order
	return &order, nil
}

func (r *Repository) ClaimFulfillment(_ context.Context, id int64, from entities.FulfillmentStatusType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.getLocked(id)
	if !ok {
		return false, entities.ErrOrderNotFound
	}
	if e.order.Status != entities.OrderApproved || e.order.Fulfillment != from {
		return false, nil
	}
	now := r.now()
	e.order.Fulfillment = entities.FulfillmentClaimed
	e.order.ClaimedAt = &now
	e.expiry = now.Add(r.ttl)
	return true, nil
}

// ReclaimFulfillment takes over an unfinished claim older than lease.
func (r *Repository) ReclaimFulfillment(_ context.Context, id int64, lease time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.getLocked(id)
	if !ok {
		return false, entities.ErrOrderNotFound
	}
	if e.order.Status != entities.OrderApproved || e.order.Fulfillment != entities.FulfillmentClaimed {
		return false, nil
	}
	now := r.now()
	if e.order.ClaimedAt != nil && now.Sub(*e.order.ClaimedAt) < lease {
		return false, nil
	}
	e.order.ClaimedAt = &now
	e.expiry = now.Add(r.ttl)
	return true, nil
}

func (r *Repository) FinishFulfillment(_ context.Context, id int64, sent bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.getLocked(id)
	if !ok || e.order.Fulfillment != entities.FulfillmentClaimed {
		return fmt.Errorf("order %d: %w", id, entities.ErrConflict)
	}
	e.order.Fulfillment = entities.FulfillmentFailed
	if sent {
		e.order.Fulfillment = entities.FulfillmentSent
	}
	return nil
}

func (r *Repository) ListStale(context.Context, entities.StaleOrderFilter) ([]entities.Order, error) {
	return nil, entities.ErrStoreUnsupported
}

func (r *Repository) getLocked(id int64) (*entry, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	if r.now().After(e.expiry) {
		delete(r.entries, id)
		return nil, false
	}
	return e, true
}

func (r *Repository) putLocked(order *entities.Order) {
	r.entries[order.ID] = &entry{
		order:  *order,
		expiry: r.now().Add(r.ttl),
	}
}

func (r *Repository) cleanupExpiredLocked() {
	now := r.now()
	for id, e := range r.entries {
		if now.After(e.expiry) {
			delete(r.entries, id)
		}
	}
}

func orderID(externalReference string, meta map[string]string) (int64, error) {
	raw := meta[entities.MetaOrderID]
	if raw == "" {
		raw = externalReference
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: reference %q", entities.ErrOrderNotFound, raw)
	}
	return id, nil
}

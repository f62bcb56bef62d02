package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"checkout/internal/entities"
	"checkout/internal/pkg/metrics"
	"checkout/pkg/logger"
	retrierconfig "checkout/pkg/retrier"
	"checkout/pkg/retrier/backoff_adapter"

	"github.com/shopspring/decimal"
)

const (
	conflictInitialInterval = 20 * time.Millisecond
	conflictMaxInterval     = 200 * time.Millisecond
	conflictMaxElapsedTime  = 5 * time.Second
	conflictRandomization   = 0.5
	conflictMultiplier      = 2.0

	defaultClaimLease = 15 * time.Minute
)

type Config struct {
	// MaxConflictRetries bounds re-runs after a lost optimistic version check.
	MaxConflictRetries uint64
	StaleAfter         time.Duration
	ResyncBatchSize    int
	// ClaimLease is how long a delivery claim is held before a resend may take it over.
	ClaimLease time.Duration
	// SearchWindow is how far back unpaid orders are looked up by reference. Zero disables it.
	SearchWindow time.Duration
}

type Service struct {
	log        serviceLogger
	gateway    PaymentGateway
	store      OrderStore
	dispatcher Dispatcher
	txManager  TxManager
	retrier    retrierconfig.Retrier
	cfg        Config
}

func New(
	log serviceLogger,
	gateway PaymentGateway,
	store OrderStore,
	dispatcher Dispatcher,
	txManager TxManager,
	cfg Config,
) *Service {
	if cfg.ClaimLease <= 0 {
		cfg.ClaimLease = defaultClaimLease
	}
	return &Service{
		log:        log.With(logger.NewField("component", "reconciliation")),
		gateway:    gateway,
		store:      store,
		dispatcher: dispatcher,
		txManager:  txManager,
		retrier: backoff_adapter.New(retrierconfig.Config{
			InitialInterval: conflictInitialInterval,
			MaxInterval:     conflictMaxInterval,
			MaxElapsedTime:  conflictMaxElapsedTime,
			Randomization:   conflictRandomization,
			Multiplier:      conflictMultiplier,
			MaxRetries:      cfg.MaxConflictRetries,
			ShouldRetry: func(err error) bool {
				return errors.Is(err, entities.ErrConflict)
			},
		}),
		cfg: cfg,
	}
}

// applied is what one persisted reconciliation attempt produced.
type applied struct {
	order    *entities.Order
	previous entities.OrderStatusType
	claimed  bool
}

// Reconcile brings the order behind a payment in line with the gateway's view of
// that payment and fulfills it if this call is the one that claimed delivery.
func (s *Service) Reconcile(ctx context.Context, ref entities.PaymentReference) (*entities.ReconciliationResult, error) {
	if ref.PaymentID == "" {
		return nil, ErrMissingPaymentID
	}

	payment, err := s.gateway.GetPayment(ctx, ref.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	reference := payment.ExternalReference
	if ref.ExternalReference != "" {
		if reference != "" && reference != ref.ExternalReference {
			return nil, fmt.Errorf("%w: payment %s belongs to %q, got %q",
				entities.ErrReferenceMismatch, payment.ID, reference, ref.ExternalReference)
		}
		reference = ref.ExternalReference
	}

	var state applied
	err = s.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		var applyErr error
		state, applyErr = s.apply(ctx, reference, payment)
		return applyErr
	})
	if err != nil {
		return nil, err
	}

	result := &entities.ReconciliationResult{
		Order:          state.order,
		PaymentID:      payment.ID,
		PaymentStatus:  payment.Status,
		StatusDetail:   payment.StatusDetail,
		Amount:         payment.TransactionAmount,
		PreviousStatus: state.previous,
		NewlyApproved:  state.previous != entities.OrderApproved && state.order.Status == entities.OrderApproved,
	}

	if state.claimed {
		result.EmailSent = s.fulfill(ctx, state.order)
	}

	metrics.ReconciliationsTotal.WithLabelValues(
		state.order.Status.String(),
		strconv.FormatBool(result.NewlyApproved),
	).Inc()

	s.log.Info("payment reconciled",
		logger.NewField("order_id", state.order.ID),
		logger.NewField("payment_id", payment.ID),
		logger.NewField("payment_status", payment.Status),
		logger.NewField("previous_status", state.previous.String()),
		logger.NewField("status", state.order.Status.String()),
		logger.NewField("email_sent", result.EmailSent),
	)

	return result, nil
}

// apply persists the new status and, for approved orders, the fulfillment claim
// in one transaction.
func (s *Service) apply(ctx context.Context, reference string, payment *entities.Payment) (applied, error) {
	order, err := s.store.Resolve(ctx, reference, payment)
	if err != nil {
		return applied{}, fmt.Errorf("resolve order: %w", err)
	}

	state := applied{order: order, previous: order.Status}
	status := MapStatus(payment.Status)

	modify := entities.OrderModify{ID: order.ID, Version: &order.Version}
	changed := false
	if order.PaymentID == nil || *order.PaymentID != payment.ID {
		if order.PaymentID != nil && order.Status == entities.OrderApproved {
			return applied{}, fmt.Errorf("%w: order %d approved with payment %s, ignoring %s",
				entities.ErrPaymentConflict, order.ID, *order.PaymentID, payment.ID)
		}
		modify.PaymentID = &payment.ID
		changed = true
	}
	if status != order.Status {
		modify.Status = &status
		changed = true
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if changed {
			updated, err := s.store.Update(ctx, modify)
			if err != nil {
				return fmt.Errorf("update order: %w", err)
			}
			state.order = updated
		}

		if state.order.Status != entities.OrderApproved || state.order.Fulfillment != entities.FulfillmentNone {
			return nil
		}
		if expected, ok := underpaid(state.order, payment); ok {
			s.log.Warn("approved payment below order total, fulfillment withheld",
				logger.NewField("order_id", state.order.ID),
				logger.NewField("payment_id", payment.ID),
				logger.NewField("amount", payment.TransactionAmount.String()),
				logger.NewField("expected", expected.String()),
			)
			return nil
		}

		claimed, err := s.store.ClaimFulfillment(ctx, state.order.ID, entities.FulfillmentNone)
		if err != nil {
			return fmt.Errorf("claim fulfillment: %w", err)
		}
		if claimed {
			state.order.Fulfillment = entities.FulfillmentClaimed
		}
		state.claimed = claimed
		return nil
	})
	if err != nil {
		return applied{}, err
	}
	return state, nil
}

// underpaid reports whether the payment covers less than price times quantity.
func underpaid(order *entities.Order, payment *entities.Payment) (decimal.Decimal, bool) {
	quantity := max(order.Product.Quantity, 1)
	expected := order.Product.Price.Mul(decimal.NewFromInt(int64(quantity)))
	return expected, payment.TransactionAmount.LessThan(expected)
}

// fulfill runs after the claim is committed. A cancelled caller must not leave
// the claim dangling, so delivery and its bookkeeping ignore cancellation.
func (s *Service) fulfill(ctx context.Context, order *entities.Order) bool {
	ctx = context.WithoutCancel(ctx)

	sent := s.dispatcher.Dispatch(ctx, order)
	if err := s.store.FinishFulfillment(ctx, order.ID, sent); err != nil {
		s.log.Error("record fulfillment outcome",
			logger.NewField("order_id", order.ID),
			logger.NewField("sent", sent),
			logger.NewField("error", err),
		)
		return sent
	}

	if sent {
		order.Fulfillment = entities.FulfillmentSent
	} else {
		order.Fulfillment = entities.FulfillmentFailed
	}
	return sent
}

// ResendFulfillment re-sends the purchase email of an approved order whose
// previous delivery failed, or whose delivery claim outlived its lease without
// an outcome. The payment id acts as the access token.
func (s *Service) ResendFulfillment(ctx context.Context, orderID int64, token string) (bool, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("get order: %w", err)
	}

	if token == "" || order.PaymentID == nil || *order.PaymentID != token {
		return false, entities.ErrUnauthorized
	}
	if order.Status != entities.OrderApproved {
		return false, fmt.Errorf("%w: status %s", entities.ErrNotApproved, order.Status)
	}

	var claimed bool
	switch order.Fulfillment {
	case entities.FulfillmentSent:
		return false, ErrAlreadyFulfilled
	case entities.FulfillmentFailed:
		claimed, err = s.store.ClaimFulfillment(ctx, order.ID, entities.FulfillmentFailed)
	case entities.FulfillmentClaimed:
		claimed, err = s.store.ReclaimFulfillment(ctx, order.ID, s.cfg.ClaimLease)
		if err == nil && claimed {
			s.log.Warn("took over expired fulfillment claim", logger.NewField("order_id", order.ID))
		}
	default:
		return false, fmt.Errorf("%w: %s", ErrFulfillmentBusy, order.Fulfillment)
	}
	if err != nil {
		return false, fmt.Errorf("claim fulfillment: %w", err)
	}
	if !claimed {
		return false, fmt.Errorf("%w: %s", ErrFulfillmentBusy, order.Fulfillment)
	}
	order.Fulfillment = entities.FulfillmentClaimed

	return s.fulfill(ctx, order), nil
}

// ResyncStale re-reconciles orders whose payment is still pending or in process.
// Recent orders that never learned their payment id are looked up by reference.
// A failing order is logged and does not stop the batch.
func (s *Service) ResyncStale(ctx context.Context) error {
	now := time.Now()
	filter := entities.StaleOrderFilter{
		UpdatedBefore: now.Add(-s.cfg.StaleAfter),
		Limit:         s.cfg.ResyncBatchSize,
	}
	if s.cfg.SearchWindow > 0 {
		filter.UnpaidCreatedAfter = now.Add(-s.cfg.SearchWindow)
	}

	orders, err := s.store.ListStale(ctx, filter)
	if err != nil {
		return fmt.Errorf("list stale orders: %w", err)
	}

	for i := range orders {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		order := &orders[i]
		reference := strconv.FormatInt(order.ID, 10)

		var paymentID string
		if order.PaymentID != nil {
			paymentID = *order.PaymentID
		} else {
			paymentID, err = s.searchPayment(ctx, order, reference)
			if err != nil {
				s.log.Error("search order payment",
					logger.NewField("order_id", order.ID),
					logger.NewField("error", err),
				)
				continue
			}
			if paymentID == "" {
				continue
			}
		}

		_, err := s.Reconcile(ctx, entities.PaymentReference{
			PaymentID:         paymentID,
			ExternalReference: reference,
		})
		if err != nil {
			s.log.Error("resync order",
				logger.NewField("order_id", order.ID),
				logger.NewField("payment_id", paymentID),
				logger.NewField("error", err),
			)
		}
	}
	return nil
}

// searchPayment picks the approved payment made against reference, else the newest.
// With none found the order is touched so it rotates behind the rest of the backlog.
func (s *Service) searchPayment(ctx context.Context, order *entities.Order, reference string) (string, error) {
	payments, err := s.gateway.SearchPayments(ctx, reference)
	if err != nil {
		return "", fmt.Errorf("search payments: %w", err)
	}

	if len(payments) == 0 {
		if _, err := s.store.Update(ctx, entities.OrderModify{ID: order.ID, Version: &order.Version}); err != nil &&
			!errors.Is(err, entities.ErrConflict) {
			return "", fmt.Errorf("touch order: %w", err)
		}
		return "", nil
	}

	for i := range payments {
		if MapStatus(payments[i].Status) == entities.OrderApproved {
			return payments[i].ID, nil
		}
	}
	return payments[0].ID, nil
}

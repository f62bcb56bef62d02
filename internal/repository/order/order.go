package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"checkout/internal/entities"
	"checkout/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const orderColumns = `id, first_name, last_name, document, email, course_id, course_title,
	price::text, quantity, payment_id, preference_id, status, fulfillment, claimed_at, version, created_at, updated_at`

type Repository struct {
	querier repository.Querier
}

func New(querier repository.Querier) *Repository {
	return &Repository{
		querier: querier,
	}
}

func (r *Repository) Create(ctx context.Context, order *entities.Order) (int64, error) {
	orderModel := FromDomain(order)
	query := `INSERT INTO orders (first_name, last_name, document, email, course_id, course_title,
			price, quantity, status, fulfillment)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)
		RETURNING id`

	var id int64
	err := r.querier.QueryRow(
		ctx,
		query,
		orderModel.FirstName,
		orderModel.LastName,
		orderModel.Document,
		orderModel.Email,
		orderModel.CourseID,
		orderModel.CourseTitle,
		orderModel.Price,
		orderModel.Quantity,
		orderModel.Status,
		orderModel.Fulfillment,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("unexpected order repository create error: %w", err)
	}

	return id, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*entities.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrOrderNotFound
		}
		return nil, fmt.Errorf("unexpected order repository getbyid error: %w", err)
	}
	return order, nil
}

// Resolve treats the external reference as the order id. The payment is not consulted.
func (r *Repository) Resolve(ctx context.Context, externalReference string, _ *entities.Payment) (*entities.Order, error) {
	id, err := strconv.ParseInt(externalReference, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: reference %q", entities.ErrOrderNotFound, externalReference)
	}
	return r.GetByID(ctx, id)
}

// Update applies the non-nil fields. preference_id is only written while still NULL.
// When Version is set, a stale version yields entities.ErrConflict.
func (r *Repository) Update(ctx context.Context, modify entities.OrderModify) (*entities.Order, error) {
	modifyModel := FromDomainModify(&modify)

	builder := qb.Update("orders")
	if modifyModel.Status != nil {
		builder = builder.Set("status", *modifyModel.Status)
	}
	if modifyModel.PaymentID != nil {
		builder = builder.Set("payment_id", *modifyModel.PaymentID)
	}
	if modifyModel.PreferenceID != nil {
		builder = builder.Set("preference_id", sq.Expr("COALESCE(preference_id, ?)", *modifyModel.PreferenceID))
	}
	builder = builder.
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()"))

	where := sq.Eq{"id": modifyModel.ID}
	if modifyModel.Version != nil {
		where["version"] = *modifyModel.Version
	}
	builder = builder.Where(where).Suffix("RETURNING " + orderColumns)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository update error: %w", err)
	}

	order, err := r.scanOne(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if modifyModel.Version == nil {
				return nil, entities.ErrOrderNotFound
			}
			if _, getErr := r.GetByID(ctx, modifyModel.ID); getErr != nil {
				return nil, getErr
			}
			return nil, entities.ErrConflict
		}
		if repository.IsPgErrorWithCode(err, repository.PgErrUniqueViolation) {
			return nil, entities.ErrPaymentConflict
		}
		return nil, fmt.Errorf("unexpected order repository update error: %w", err)
	}
	return order, nil
}

// ClaimFulfillment moves fulfillment from the given state to claimed, only for approved orders.
// It reports whether this caller won the claim.
func (r *Repository) ClaimFulfillment(ctx context.Context, id int64, from entities.FulfillmentStatusType) (bool, error) {
	query := `UPDATE orders
		SET fulfillment = $1, claimed_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3 AND fulfillment = $4`

	tag, err := r.querier.Exec(ctx, query,
		entities.FulfillmentClaimed.String(),
		id,
		entities.OrderApproved.String(),
		from.String(),
	)
	if err != nil {
		return false, fmt.Errorf("unexpected order repository claim error: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReclaimFulfillment takes over a claim of an approved order that was taken more
// than lease ago and never finished. It reports whether this caller won it.
func (r *Repository) ReclaimFulfillment(ctx context.Context, id int64, lease time.Duration) (bool, error) {
	query := `UPDATE orders
		SET claimed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $2 AND fulfillment = $3
			AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $4))`

	tag, err := r.querier.Exec(ctx, query,
		id,
		entities.OrderApproved.String(),
		entities.FulfillmentClaimed.String(),
		lease.Seconds(),
	)
	if err != nil {
		return false, fmt.Errorf("unexpected order repository reclaim error: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) FinishFulfillment(ctx context.Context, id int64, sent bool) error {
	outcome := entities.FulfillmentFailed
	if sent {
		outcome = entities.FulfillmentSent
	}

	query := `UPDATE orders
		SET fulfillment = $1, updated_at = NOW()
		WHERE id = $2 AND fulfillment = $3`

	tag, err := r.querier.Exec(ctx, query, outcome.String(), id, entities.FulfillmentClaimed.String())
	if err != nil {
		return fmt.Errorf("unexpected order repository finish fulfillment error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, entities.ErrConflict)
	}
	return nil
}

// ListStale returns pending or in-process orders not touched since filter.UpdatedBefore,
// least recently updated first.
func (r *Repository) ListStale(ctx context.Context, filter entities.StaleOrderFilter) ([]entities.Order, error) {
	var paid sq.Sqlizer = sq.NotEq{"payment_id": nil}
	if !filter.UnpaidCreatedAfter.IsZero() {
		paid = sq.Or{paid, sq.Gt{"created_at": filter.UnpaidCreatedAfter}}
	}

	query, args, err := qb.
		Select(orderColumns).
		From("orders").
		Where(paid).
		Where(sq.Eq{"status": []string{entities.OrderPending.String(), entities.OrderInProcess.String()}}).
		Where(sq.Lt{"updated_at": filter.UpdatedBefore}).
		OrderBy("updated_at").
		Limit(uint64(filter.Limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository liststale error: %w", err)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unexpected order repository liststale error: %w", err)
	}
	defer rows.Close()

	ordersDB := make([]OrderDB, 0, filter.Limit)
	for rows.Next() {
		var orderModel OrderDB
		if err := rows.Scan(orderModel.fields()...); err != nil {
			return nil, fmt.Errorf("unexpected order repository liststale error: %w", err)
		}
		ordersDB = append(ordersDB, orderModel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected order repository liststale error: %w", err)
	}

	return ToDomainList(ordersDB)
}

func (r *Repository) scanOne(row pgx.Row) (*entities.Order, error) {
	var orderModel OrderDB
	if err := row.Scan(orderModel.fields()...); err != nil {
		return nil, err
	}
	return ToDomain(&orderModel)
}

func (o *OrderDB) fields() []any {
	return []any{
		&o.ID,
		&o.FirstName,
		&o.LastName,
		&o.Document,
		&o.Email,
		&o.CourseID,
		&o.CourseTitle,
		&o.Price,
		&o.Quantity,
		&o.PaymentID,
		&o.PreferenceID,
		&o.Status,
		&o.Fulfillment,
		&o.ClaimedAt,
		&o.Version,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
	"storefront/internal/repository/pgutil"
)

const orderColumns = `id::text, user_id::text, checkout_id::text, order_items, shipping_address, payment_method,
total_price_cents, is_paid, paid_at, payment_status, status, is_delivered, delivered_at, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) CreateForCheckout(ctx context.Context, finalizedAt time.Time, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE checkouts
SET is_finalized = true, finalized_at = $2, updated_at = now()
WHERE id = $1 AND is_paid AND NOT is_finalized
`, o.CheckoutID, finalizedAt)
	if err != nil {
		r.logger.Printf("order repo: finalize checkout_id=%s error=%v", o.CheckoutID, err)
		return nil, pgutil.Translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, fmt.Errorf("checkout %s not finalizable: %w", o.CheckoutID, domain.ErrConflict)
	}

	const q = `
INSERT INTO orders (user_id, checkout_id, order_items, shipping_address, payment_method, total_price_cents,
    is_paid, paid_at, payment_status, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + orderColumns
	created, err := scanOrder(tx.QueryRow(ctx, q,
		o.UserID,
		o.CheckoutID,
		o.Items,
		o.ShippingAddress,
		o.PaymentMethod,
		o.TotalPriceCents,
		o.IsPaid,
		o.PaidAt,
		o.PaymentStatus,
		string(o.Status),
	))
	if err != nil {
		err = pgutil.Translate(err)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("order for checkout %s exists: %w", o.CheckoutID, domain.ErrConflict)
		}
		r.logger.Printf("order repo: insert checkout_id=%s error=%v", o.CheckoutID, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s checkout_id=%s user_id=%s", created.ID, created.CheckoutID, created.UserID)
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, pgutil.Translate(err)
	}
	return o, nil
}

func (r *postgresRepo) GetByCheckoutID(ctx context.Context, checkoutID string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE checkout_id = $1`, checkoutID))
	if err != nil {
		return nil, pgutil.Translate(err)
	}
	return o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
UPDATE orders
SET status = $2, is_delivered = $3, delivered_at = $4, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns
	updated, err := scanOrder(r.pool.QueryRow(ctx, q, o.ID, string(o.Status), o.IsDelivered, o.DeliveredAt))
	if err != nil {
		r.logger.Printf("order repo: update status id=%s error=%v", o.ID, err)
		return nil, pgutil.Translate(err)
	}
	r.logger.Printf("order repo: status id=%s status=%s", updated.ID, updated.Status)
	return updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("order repo: delete id=%s error=%v", id, err)
		return pgutil.Translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, pgutil.Translate(err)
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.CheckoutID,
		&o.Items,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.TotalPriceCents,
		&o.IsPaid,
		&o.PaidAt,
		&o.PaymentStatus,
		&status,
		&o.IsDelivered,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

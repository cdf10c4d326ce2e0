package checkout

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
	"storefront/internal/repository/pgutil"
)

const checkoutColumns = `id::text, user_id::text, checkout_items, shipping_address, payment_method, total_price_cents,
is_paid, paid_at, payment_status, payment_details, COALESCE(payment_reference, ''), is_finalized, finalized_at,
created_at, updated_at`

const paymentReferenceIndex = "checkouts_payment_reference_key"

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

func (r *postgresRepo) Create(ctx context.Context, co domain.Checkout) (*domain.Checkout, error) {
	const q = `
INSERT INTO checkouts (user_id, checkout_items, shipping_address, payment_method, total_price_cents, payment_status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + checkoutColumns
	created, err := scanCheckout(r.pool.QueryRow(ctx, q, co.UserID, co.Items, co.ShippingAddress, co.PaymentMethod, co.TotalPriceCents, co.PaymentStatus))
	if err != nil {
		r.logger.Printf("checkout repo: create user_id=%s error=%v", co.UserID, err)
		return nil, pgutil.Translate(err)
	}
	r.logger.Printf("checkout repo: created id=%s user_id=%s total=%d", created.ID, created.UserID, created.TotalPriceCents)
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Checkout, error) {
	co, err := scanCheckout(r.pool.QueryRow(ctx, `SELECT `+checkoutColumns+` FROM checkouts WHERE id = $1`, id))
	if err != nil {
		return nil, pgutil.Translate(err)
	}
	return co, nil
}

func (r *postgresRepo) MarkPaid(ctx context.Context, co domain.Checkout) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE checkouts
SET is_paid = true, paid_at = $2, payment_status = $3, payment_details = $4, payment_reference = NULLIF($5, ''),
    updated_at = now()
WHERE id = $1 AND NOT is_paid
`, co.ID, co.PaidAt, co.PaymentStatus, co.PaymentDetails, co.PaymentReference)
	if err != nil {
		r.logger.Printf("checkout repo: mark paid id=%s error=%v", co.ID, err)
		if pgutil.IsUniqueViolation(err, paymentReferenceIndex) {
			return fmt.Errorf("payment %s already settled another checkout: %w", co.PaymentReference, domain.ErrPaymentRejected)
		}
		return pgutil.Translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("checkout %s already paid: %w", co.ID, domain.ErrConflict)
	}
	r.logger.Printf("checkout repo: marked paid id=%s", co.ID)
	return nil
}

// scanCheckout reads a row selected with checkoutColumns.
func scanCheckout(row pgx.Row) (*domain.Checkout, error) {
	var co domain.Checkout
	err := row.Scan(
		&co.ID,
		&co.UserID,
		&co.Items,
		&co.ShippingAddress,
		&co.PaymentMethod,
		&co.TotalPriceCents,
		&co.IsPaid,
		&co.PaidAt,
		&co.PaymentStatus,
		&co.PaymentDetails,
		&co.PaymentReference,
		&co.IsFinalized,
		&co.FinalizedAt,
		&co.CreatedAt,
		&co.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &co, nil
}

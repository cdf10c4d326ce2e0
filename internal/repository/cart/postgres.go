package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
	"storefront/internal/repository/pgutil"
)

const cartColumns = `id::text, user_id::text, guest_id, total_price_cents, version, created_at, updated_at`

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

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1`, userID)
}

func (r *postgresRepo) GetByGuest(ctx context.Context, guestID string) (*domain.Cart, error) {
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE guest_id = $1`, guestID)
}

func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if cart.ID == "" {
		err = tx.QueryRow(ctx, `
INSERT INTO carts (user_id, guest_id, total_price_cents)
VALUES ($1, $2, $3)
RETURNING id::text, version, created_at, updated_at
`, cart.UserID, cart.GuestID, cart.TotalPriceCents).Scan(&cart.ID, &cart.Version, &cart.CreatedAt, &cart.UpdatedAt)
		if err != nil {
			// Another request created the cart for this owner first.
			if errors.Is(pgutil.Translate(err), domain.ErrAlreadyExists) {
				r.logger.Printf("cart repo: create owner=%s lost race", cart.Owner())
				return fmt.Errorf("cart created concurrently: %w", domain.ErrConflict)
			}
			r.logger.Printf("cart repo: create owner=%s error=%v", cart.Owner(), err)
			return err
		}
	} else {
		err = tx.QueryRow(ctx, `
UPDATE carts
SET user_id = $2,
    guest_id = $3,
    total_price_cents = $4,
    version = version + 1,
    updated_at = now()
WHERE id = $1 AND version = $5
RETURNING version, updated_at
`, cart.ID, cart.UserID, cart.GuestID, cart.TotalPriceCents, cart.Version).Scan(&cart.Version, &cart.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				r.logger.Printf("cart repo: save id=%s stale version=%d", cart.ID, cart.Version)
				return fmt.Errorf("cart %s was modified concurrently: %w", cart.ID, domain.ErrConflict)
			}
			r.logger.Printf("cart repo: save id=%s error=%v", cart.ID, err)
			return pgutil.Translate(err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cart.ID); err != nil {
			return err
		}
	}

	if err := insertLines(ctx, tx, cart); err != nil {
		r.logger.Printf("cart repo: write lines id=%s error=%v", cart.ID, err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("cart repo: saved id=%s owner=%s lines=%d version=%d", cart.ID, cart.Owner(), len(cart.Items), cart.Version)
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("cart repo: delete id=%s error=%v", id, err)
		return pgutil.Translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("cart repo: deleted id=%s", id)
	return nil
}

func insertLines(ctx context.Context, tx pgx.Tx, cart *domain.Cart) error {
	if len(cart.Items) == 0 {
		return nil
	}
	const q = `
INSERT INTO cart_lines (cart_id, position, product_id, name, image, price_cents, size, color, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	batch := &pgx.Batch{}
	for i, item := range cart.Items {
		batch.Queue(q, cart.ID, i, item.ProductID, item.Name, item.Image, item.PriceCents, item.Size, item.Color, item.Quantity)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, args...).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.GuestID,
		&cart.TotalPriceCents,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, pgutil.Translate(err)
	}

	const linesQuery = `
SELECT product_id::text, name, image, price_cents, size, color, quantity
FROM cart_lines
WHERE cart_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Items = []domain.LineItem{}
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.Image,
			&item.PriceCents,
			&item.Size,
			&item.Color,
			&item.Quantity,
		); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

package subscriber

import (
	"context"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
	"storefront/internal/repository/pgutil"
)

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

func (r *postgresRepo) Create(ctx context.Context, email string) (*domain.Subscriber, error) {
	var s domain.Subscriber
	err := r.pool.QueryRow(ctx, `
INSERT INTO subscribers (email)
VALUES ($1)
RETURNING id::text, email, subscribed_at
`, strings.ToLower(email)).Scan(&s.ID, &s.Email, &s.SubscribedAt)
	if err != nil {
		err = pgutil.Translate(err)
		r.logger.Printf("subscriber repo: create error=%v", err)
		return nil, err
	}
	r.logger.Printf("subscriber repo: created id=%s", s.ID)
	return &s, nil
}

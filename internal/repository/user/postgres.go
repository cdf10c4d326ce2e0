package user

import (
	"context"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
	"storefront/internal/repository/pgutil"
)

const userColumns = `id::text, name, email, password_hash, role, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (name, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns
	created, err := r.scanUser(r.pool.QueryRow(ctx, q, u.Name, strings.ToLower(u.Email), u.PasswordHash, string(u.Role)))
	if err != nil {
		return nil, err
	}
	r.logger.Printf("user repo: created id=%s role=%s", created.ID, created.Role)
	return created, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) LIMIT 1`
	return r.scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Printf("user repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
UPDATE users
SET name = $2, email = $3, password_hash = $4, role = $5, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns
	updated, err := r.scanUser(r.pool.QueryRow(ctx, q, u.ID, u.Name, strings.ToLower(u.Email), u.PasswordHash, string(u.Role)))
	if err != nil {
		return nil, err
	}
	r.logger.Printf("user repo: updated id=%s", updated.ID)
	return updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("user repo: delete id=%s error=%v", id, err)
		return pgutil.Translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("user repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		err = pgutil.Translate(err)
		if err != domain.ErrNotFound && err != domain.ErrAlreadyExists {
			r.logger.Printf("user repo: scan error=%v", err)
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

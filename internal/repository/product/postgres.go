package product

import (
	"context"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
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

func (r *postgresRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q, args := buildListQuery(filter)
	result, err := r.query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	r.logger.Printf("product repo: list count=%d", len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		err = pgutil.Translate(err)
		if err == domain.ErrNotFound {
			r.logger.Printf("product repo: get id=%s not found", id)
		} else {
			r.logger.Printf("product repo: get id=%s error=%v", id, err)
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	normalize(&p)
	const q = `
INSERT INTO products (name, description, price_cents, discount_price_cents, count_in_stock, sku, category, brand,
    sizes, colors, collections, material, gender, images, is_featured, is_published, rating, num_reviews, tags,
    dimensions, weight, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
RETURNING ` + productColumns
	created, err := scanProduct(r.pool.QueryRow(ctx, q, writeArgs(p)...))
	if err != nil {
		r.logger.Printf("product repo: create sku=%s error=%v", p.SKU, err)
		return nil, pgutil.Translate(err)
	}
	r.logger.Printf("product repo: created id=%s sku=%s", created.ID, created.SKU)
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	normalize(&p)
	const q = `
UPDATE products
SET name = $1, description = $2, price_cents = $3, discount_price_cents = $4, count_in_stock = $5, sku = $6,
    category = $7, brand = $8, sizes = $9, colors = $10, collections = $11, material = $12, gender = $13,
    images = $14, is_featured = $15, is_published = $16, rating = $17, num_reviews = $18, tags = $19,
    dimensions = $20, weight = $21, created_by = $22, updated_at = now()
WHERE id = $23
RETURNING ` + productColumns
	args := append(writeArgs(p), p.ID)
	updated, err := scanProduct(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, pgutil.Translate(err)
	}
	r.logger.Printf("product repo: updated id=%s", updated.ID)
	return updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return pgutil.Translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) TopRated(ctx context.Context) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products ORDER BY rating DESC, num_reviews DESC LIMIT 1`))
	if err != nil {
		return nil, pgutil.Translate(err)
	}
	return p, nil
}

func (r *postgresRepo) Newest(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *postgresRepo) Similar(ctx context.Context, p domain.Product, limit int) ([]domain.Product, error) {
	const q = `SELECT ` + productColumns + `
FROM products
WHERE id <> $1 AND gender = $2 AND category = $3
ORDER BY rating DESC, created_at DESC
LIMIT $4`
	return r.query(ctx, q, p.ID, p.Gender, p.Category, limit)
}

func (r *postgresRepo) UpsertBySKU(ctx context.Context, p domain.Product) (*domain.Product, error) {
	normalize(&p)
	const q = `
INSERT INTO products (name, description, price_cents, discount_price_cents, count_in_stock, sku, category, brand,
    sizes, colors, collections, material, gender, images, is_featured, is_published, rating, num_reviews, tags,
    dimensions, weight, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    discount_price_cents = EXCLUDED.discount_price_cents,
    count_in_stock = EXCLUDED.count_in_stock,
    category = EXCLUDED.category,
    brand = EXCLUDED.brand,
    sizes = EXCLUDED.sizes,
    colors = EXCLUDED.colors,
    collections = EXCLUDED.collections,
    material = EXCLUDED.material,
    gender = EXCLUDED.gender,
    images = EXCLUDED.images,
    is_featured = EXCLUDED.is_featured,
    is_published = EXCLUDED.is_published,
    rating = EXCLUDED.rating,
    num_reviews = EXCLUDED.num_reviews,
    tags = EXCLUDED.tags,
    dimensions = EXCLUDED.dimensions,
    weight = EXCLUDED.weight,
    updated_at = now()
RETURNING ` + productColumns
	res, err := scanProduct(r.pool.QueryRow(ctx, q, writeArgs(p)...))
	if err != nil {
		r.logger.Printf("product repo: upsert sku=%s error=%v", p.SKU, err)
		return nil, pgutil.Translate(err)
	}
	r.logger.Printf("product repo: upserted sku=%s id=%s", res.SKU, res.ID)
	return res, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.DiscountPriceCents, &p.CountInStock, &p.SKU, &p.Category, &p.Brand,
		&p.Sizes, &p.Colors, &p.Collections, &p.Material, &p.Gender, &p.Images, &p.IsFeatured, &p.IsPublished,
		&p.Rating, &p.NumReviews, &p.Tags, &p.Dimensions, &p.Weight, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func writeArgs(p domain.Product) []any {
	return []any{
		p.Name, p.Description, p.PriceCents, p.DiscountPriceCents, p.CountInStock, p.SKU, p.Category, p.Brand,
		p.Sizes, p.Colors, p.Collections, p.Material, p.Gender, p.Images, p.IsFeatured, p.IsPublished,
		p.Rating, p.NumReviews, p.Tags, p.Dimensions, p.Weight, p.CreatedBy,
	}
}

// normalize replaces nil collections so NOT NULL array and json columns get
// empty values instead of NULL.
func normalize(p *domain.Product) {
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []domain.ProductImage{}
	}
}

package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	// TopRated returns the highest rated product.
	TopRated(ctx context.Context) (*domain.Product, error)
	Newest(ctx context.Context, limit int) ([]domain.Product, error)
	// Similar returns products sharing gender and category with p, excluding p.
	Similar(ctx context.Context, p domain.Product, limit int) ([]domain.Product, error)
	// UpsertBySKU inserts or replaces the product identified by its sku.
	UpsertBySKU(ctx context.Context, p domain.Product) (*domain.Product, error)
}

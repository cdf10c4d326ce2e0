package checkout

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, co domain.Checkout) (*domain.Checkout, error)
	GetByID(ctx context.Context, id string) (*domain.Checkout, error)
	// MarkPaid writes the payment fields only while the stored row is unpaid.
	// It returns domain.ErrConflict when the row was already paid.
	MarkPaid(ctx context.Context, co domain.Checkout) error
}

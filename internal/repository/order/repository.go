package order

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type Repository interface {
	// CreateForCheckout flags the checkout finalized and inserts the order in
	// one transaction. It returns domain.ErrConflict when the checkout was
	// already finalized or is not paid.
	CreateForCheckout(ctx context.Context, finalizedAt time.Time, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByCheckoutID(ctx context.Context, checkoutID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, o domain.Order) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

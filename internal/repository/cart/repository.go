package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists carts as a whole aggregate. Save inserts carts without
// an id and otherwise performs a conditional write on Version, returning
// domain.ErrConflict when the stored version moved on.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetByGuest(ctx context.Context, guestID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, id string) error
}

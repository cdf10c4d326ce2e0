package subscriber

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create returns domain.ErrAlreadyExists for an email already subscribed.
	Create(ctx context.Context, email string) (*domain.Subscriber, error)
}

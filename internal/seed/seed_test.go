package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"
)

type stubUsers struct {
	inputs []usersvc.CreateInput
	err    error
}

func (s *stubUsers) Create(_ context.Context, in usersvc.CreateInput) (*domain.User, error) {
	s.inputs = append(s.inputs, in)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: "a1", Email: in.Email, Role: domain.RoleAdmin}, nil
}

type stubProducts struct {
	skus []string
}

func (s *stubProducts) UpsertBySKU(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.skus = append(s.skus, p.SKU)
	p.ID = "p-" + p.SKU
	return &p, nil
}

func TestApplyCreatesAdminAndProducts(t *testing.T) {
	users := &stubUsers{}
	products := &stubProducts{}

	err := Apply(context.Background(), users, products, Admin{Email: "admin@example.com", Password: "123456"}, nil)
	require.NoError(t, err)

	require.Len(t, users.inputs, 1)
	assert.Equal(t, "admin", users.inputs[0].Role)
	assert.Equal(t, "admin@example.com", users.inputs[0].Email)
	assert.Len(t, products.skus, len(demoProducts()))
}

func TestApplyToleratesExistingAdmin(t *testing.T) {
	users := &stubUsers{err: fmt.Errorf("user already exists: %w", domain.ErrAlreadyExists)}
	products := &stubProducts{}

	err := Apply(context.Background(), users, products, Admin{Email: "admin@example.com", Password: "123456"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, products.skus)
}

func TestApplyFailsOnUserError(t *testing.T) {
	users := &stubUsers{err: fmt.Errorf("password too short: %w", domain.ErrValidation)}
	products := &stubProducts{}

	err := Apply(context.Background(), users, products, Admin{Email: "admin@example.com", Password: "1"}, nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, products.skus)
}

func TestDemoProductsAreSellable(t *testing.T) {
	for _, p := range demoProducts() {
		assert.NotEmpty(t, p.SKU)
		assert.Positive(t, p.PriceCents)
		assert.NotEmpty(t, p.Images, p.SKU)
		assert.True(t, p.IsPublished, p.SKU)
	}
}

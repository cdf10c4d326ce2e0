package user

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testdb"
)

func TestPostgres_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.User{Name: "Ann", Email: "Ann@Example.com", PasswordHash: "hash", Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "ann@example.com" {
		t.Fatalf("expected lower-cased email, got %s", created.Email)
	}

	if _, err := repo.Create(ctx, domain.User{Name: "Dup", Email: "ann@example.com", PasswordHash: "hash", Role: domain.RoleCustomer}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "ANN@example.com")
	if err != nil || byEmail.ID != created.ID {
		t.Fatalf("GetByEmail = %+v, %v", byEmail, err)
	}

	created.Role = domain.RoleAdmin
	updated, err := repo.Update(ctx, *created)
	if err != nil || !updated.IsAdmin() {
		t.Fatalf("Update = %+v, %v", updated, err)
	}

	users, err := repo.List(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("List = %+v, %v", users, err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

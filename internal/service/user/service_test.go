package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"storefront/internal/domain"
)

// memoryRepo is a lightweight in-memory user repository for tests.
type memoryRepo struct {
	byEmail map[string]domain.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]domain.User)}
}

func (r *memoryRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[u.Email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	clone := u
	if clone.ID == "" {
		clone.ID = "user-" + u.Email
	}
	r.byEmail[clone.Email] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.byEmail[email]; ok {
		clone := u
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) List(context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.byEmail))
	for _, u := range r.byEmail {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, u domain.User) (*domain.User, error) {
	for email, existing := range r.byEmail {
		if existing.ID == u.ID {
			delete(r.byEmail, email)
		}
	}
	r.byEmail[u.Email] = u
	return &u, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	for email, u := range r.byEmail {
		if u.ID == id {
			delete(r.byEmail, email)
			return nil
		}
	}
	return domain.ErrNotFound
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return New(repo, []byte("test-secret"), 40*time.Hour, nil), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	u, token, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "  Ann@Example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "ann@example.com" || u.Role != domain.RoleCustomer {
		t.Fatalf("unexpected user %+v", u)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if stored := repo.byEmail["ann@example.com"]; stored.PasswordHash == "secret1" {
		t.Fatalf("password stored in clear")
	}

	if _, _, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	logged, token, err := svc.Login(ctx, "ANN@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != u.ID || token == "" {
		t.Fatalf("unexpected login result %+v", logged)
	}

	found, err := svc.LookupByToken(ctx, token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.ID != u.ID {
		t.Fatalf("lookup returned %s, want %s", found.ID, u.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	cases := []RegisterInput{
		{Name: "", Email: "a@example.com", Password: "secret1"},
		{Name: "A", Email: "not-an-email", Password: "secret1"},
		{Name: "A", Email: "a@example.com", Password: "12345"},
	}
	for _, in := range cases {
		if _, _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "bob@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLookupByTokenRejects(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u, token, err := svc.Register(ctx, RegisterInput{Name: "Cy", Email: "cy@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.LookupByToken(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	other := New(newMemoryRepo(), []byte("other-secret"), time.Hour, nil)
	if _, err := other.LookupByToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected signature mismatch to fail, got %v", err)
	}

	svc.tokens.now = func() time.Time { return time.Now().Add(-41 * time.Hour) }
	expired, err := svc.tokens.Issue(*u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc.tokens.now = time.Now
	if _, err := svc.LookupByToken(ctx, expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   u.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.LookupByToken(ctx, unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected alg none to fail, got %v", err)
	}
}

func TestEmptySigningKeyRefusesTokens(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	signed := New(repo, []byte("0123456789abcdef0123456789abcdef"), time.Hour, nil)
	u, _, err := signed.Register(ctx, RegisterInput{Name: "Ad", Email: "ad@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	unkeyed := New(repo, nil, time.Hour, nil)
	if _, err := unkeyed.tokens.Issue(*u); !errors.Is(err, errNoSigningKey) {
		t.Fatalf("expected issue without key to fail, got %v", err)
	}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte{})
	if err == nil {
		if _, err := unkeyed.LookupByToken(ctx, forged); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected token under empty key to be rejected, got %v", err)
		}
	}
}

func TestAdminCreateUpdateDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	admin, err := svc.Create(ctx, CreateInput{Name: "Root", Email: "root@example.com", Password: "secret1", Role: "admin"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !admin.IsAdmin() {
		t.Fatalf("expected admin role, got %s", admin.Role)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "X", Email: "x@example.com", Password: "secret1", Role: "owner"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected role validation error, got %v", err)
	}

	role := "customer"
	name := "Rooty"
	updated, err := svc.Update(ctx, admin.ID, UpdateInput{Name: &name, Role: &role})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Rooty" || updated.Role != domain.RoleCustomer || updated.Email != "root@example.com" {
		t.Fatalf("unexpected update %+v", updated)
	}

	if err := svc.Delete(ctx, admin.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, admin.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

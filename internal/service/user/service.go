package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"storefront/internal/domain"
	userrepo "storefront/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
)

// Service handles registration, login and account administration.
type Service struct {
	repo     userrepo.Repository
	tokens   *tokenManager
	validate *validator.Validate
	logger   *log.Logger
}

func New(repo userrepo.Repository, secret []byte, tokenTTL time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:     repo,
		tokens:   newTokenManager(secret, tokenTTL),
		validate: validator.New(),
		logger:   logger,
	}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// CreateInput is an admin-created account.
type CreateInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type UpdateInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role"`
}

// Register creates a customer account and signs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	u, err := s.create(ctx, CreateInput{Name: in.Name, Email: in.Email, Password: in.Password})
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(*u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login validates credentials and returns the user with a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(*u)
	if err != nil {
		return nil, "", err
	}
	s.logger.Printf("user: login user_id=%s", u.ID)
	return u, token, nil
}

// LookupByToken returns the user bound to a valid token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Profile(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return u, err
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	return s.create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	u, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		u.Role = role
	}
	updated, err := s.repo.Update(ctx, *u)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("email already in use: %w", domain.ErrAlreadyExists)
		}
		return nil, err
	}
	s.logger.Printf("user: updated user_id=%s role=%s", updated.ID, updated.Role)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return err
	}
	s.logger.Printf("user: deleted user_id=%s", id)
	return nil
}

func (s *Service) create(ctx context.Context, in CreateInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashed),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("user already exists: %w", domain.ErrAlreadyExists)
		}
		return nil, err
	}
	s.logger.Printf("user: created user_id=%s role=%s", u.ID, u.Role)
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package subscriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"storefront/internal/domain"
	subscriberrepo "storefront/internal/repository/subscriber"
)

type Service struct {
	repo     subscriberrepo.Repository
	validate *validator.Validate
	logger   *log.Logger
}

func New(repo subscriberrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, validate: validator.New(), logger: logger}
}

// Subscribe adds email to the newsletter list.
func (s *Service) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	sub, err := s.repo.Create(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("email is already subscribed: %w", domain.ErrAlreadyExists)
		}
		return nil, err
	}
	s.logger.Printf("subscriber: added id=%s", sub.ID)
	return sub, nil
}

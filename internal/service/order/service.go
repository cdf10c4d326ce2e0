package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	orderrepo "storefront/internal/repository/order"
)

type Service struct {
	repo   orderrepo.Repository
	events events.Publisher
	now    func() time.Time
	logger *log.Logger
}

func New(repo orderrepo.Repository, publisher events.Publisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{repo: repo, events: publisher, now: time.Now, logger: logger}
}

// ListMine returns the user's orders, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns an order visible to viewer: its owner or an admin.
func (s *Service) Get(ctx context.Context, id string, viewer domain.User) (*domain.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != viewer.ID && !viewer.IsAdmin() {
		return nil, fmt.Errorf("order belongs to another user: %w", domain.ErrForbidden)
	}
	return o, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus applies an admin status change. Any of the four statuses may
// follow any other.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := o.Status
	if !o.SetStatus(next, s.now()) {
		return o, nil
	}
	updated, err := s.repo.UpdateStatus(ctx, *o)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order: status id=%s from=%s to=%s", id, previous, next)

	evt := events.NewEvent(events.TypeOrderStatusChanged, statusChanged{
		OrderID: updated.ID,
		UserID:  updated.UserID,
		From:    previous,
		To:      updated.Status,
	})
	if err := s.events.Publish(ctx, events.TopicOrder, updated.ID, evt); err != nil {
		s.logger.Printf("order: publish %s order_id=%s error=%v", evt.Type, updated.ID, err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("order not found: %w", domain.ErrNotFound)
		}
		return err
	}
	s.logger.Printf("order: deleted id=%s", id)
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	return o, err
}

type statusChanged struct {
	OrderID string             `json:"orderId"`
	UserID  string             `json:"userId"`
	From    domain.OrderStatus `json:"from"`
	To      domain.OrderStatus `json:"to"`
}

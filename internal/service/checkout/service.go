package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"storefront/internal/domain"
	"storefront/internal/events"
	checkoutrepo "storefront/internal/repository/checkout"
	orderrepo "storefront/internal/repository/order"
	"storefront/internal/service/payment"
)

// Service drives a checkout from CREATED through PAID to FINALIZED.
type Service struct {
	checkouts checkoutrepo.Repository
	orders    orderrepo.Repository
	carts     cartStore
	verifier  payment.Verifier
	events    events.Publisher
	validate  *validator.Validate
	now       func() time.Time
	logger    *log.Logger
}

type cartStore interface {
	Get(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

func New(checkouts checkoutrepo.Repository, orders orderrepo.Repository, carts cartStore, verifier payment.Verifier, publisher events.Publisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if verifier == nil {
		verifier = payment.NewTrusting(logger)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		checkouts: checkouts,
		orders:    orders,
		carts:     carts,
		verifier:  verifier,
		events:    publisher,
		validate:  validator.New(),
		now:       time.Now,
		logger:    logger,
	}
}

type BeginInput struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required"`
}

// Begin snapshots the user's cart into a new checkout. Items and prices always
// come from the stored cart.
func (s *Service) Begin(ctx context.Context, userID string, in BeginInput) (*domain.Checkout, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	cart, err := s.carts.Get(ctx, domain.CartOwner{UserID: userID})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("cart is empty: %w", domain.ErrInvalidState)
	}
	if err != nil {
		return nil, err
	}
	co, err := domain.NewCheckout(userID, cart, in.ShippingAddress, in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	created, err := s.checkouts.Create(ctx, *co)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("checkout: begin id=%s user_id=%s lines=%d total=%d", created.ID, userID, len(created.Items), created.TotalPriceCents)
	return created, nil
}

// Get returns the checkout if it belongs to userID.
func (s *Service) Get(ctx context.Context, id, userID string) (*domain.Checkout, error) {
	co, err := s.checkouts.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("checkout not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if co.UserID != userID {
		return nil, fmt.Errorf("checkout belongs to another user: %w", domain.ErrForbidden)
	}
	return co, nil
}

// MarkPaid records a confirmed payment. Paying an already paid checkout
// returns it unchanged.
func (s *Service) MarkPaid(ctx context.Context, id, userID, status string, details map[string]interface{}) (*domain.Checkout, error) {
	co, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	changed, err := co.MarkPaid(status, details, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return co, nil
	}
	ref, err := s.verifier.Verify(ctx, *co, details)
	if err != nil {
		s.logger.Printf("checkout: payment rejected id=%s error=%v", co.ID, err)
		return nil, err
	}
	co.PaymentReference = ref
	if err := s.checkouts.MarkPaid(ctx, *co); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Paid concurrently; the stored payment stands.
			return s.checkouts.GetByID(ctx, id)
		}
		if errors.Is(err, domain.ErrPaymentRejected) {
			s.logger.Printf("checkout: payment reused id=%s reference=%s", co.ID, ref)
		}
		return nil, err
	}
	s.logger.Printf("checkout: paid id=%s user_id=%s total=%d", co.ID, userID, co.TotalPriceCents)
	return co, nil
}

// Finalize turns a paid checkout into an order. It reports created=false when
// the order already existed, in which case that order is returned.
func (s *Service) Finalize(ctx context.Context, id, userID string) (*domain.Order, bool, error) {
	co, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, false, err
	}
	if co.IsFinalized {
		existing, err := s.orders.GetByCheckoutID(ctx, co.ID)
		return existing, false, err
	}
	if _, err := co.Finalize(s.now()); err != nil {
		return nil, false, err
	}
	order, err := domain.NewOrderFromCheckout(co)
	if err != nil {
		return nil, false, err
	}

	created, err := s.orders.CreateForCheckout(ctx, *co.FinalizedAt, *order)
	if errors.Is(err, domain.ErrConflict) {
		existing, lookupErr := s.orders.GetByCheckoutID(ctx, co.ID)
		if lookupErr != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	s.logger.Printf("checkout: finalized id=%s order_id=%s user_id=%s", co.ID, created.ID, userID)

	if err := s.carts.Clear(ctx, co.UserID); err != nil {
		s.logger.Printf("checkout: clear cart user_id=%s error=%v", co.UserID, err)
	}
	evt := events.NewEvent(events.TypeOrderCreated, created)
	if err := s.events.Publish(ctx, events.TopicOrder, created.ID, evt); err != nil {
		s.logger.Printf("checkout: publish %s order_id=%s error=%v", evt.Type, created.ID, err)
	}
	return created, true, nil
}

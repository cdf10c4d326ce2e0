package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/events"
	cartrepo "storefront/internal/repository/cart"
)

// Service implements the cart operations for users and guests. Every
// mutation is a read-modify-write of the whole cart; concurrent writers are
// detected by the repository's version check and surface as
// domain.ErrConflict without retry.
type Service struct {
	repo     cartrepo.Repository
	products productReader
	guests   guestIssuer
	events   events.Publisher
	logger   *log.Logger
}

type productReader interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type guestIssuer interface {
	NewID() string
}

func New(repo cartrepo.Repository, products productReader, guests guestIssuer, publisher events.Publisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{repo: repo, products: products, guests: guests, events: publisher, logger: logger}
}

type AddItemInput struct {
	ProductID string
	Quantity  int
	Size      string
	Color     string
}

// Get returns the cart of owner without creating one.
func (s *Service) Get(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.load(ctx, owner)
}

// AddItem adds quantity of a product variant, creating the cart on first use.
// An owner with neither identity gets a newly issued guest id.
func (s *Service) AddItem(ctx context.Context, owner domain.CartOwner, in AddItemInput) (*domain.Cart, bool, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, false, fmt.Errorf("%w: productId required", domain.ErrValidation)
	}
	if in.Quantity < 1 {
		return nil, false, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	if owner.UserID == "" && owner.GuestID == "" {
		owner.GuestID = s.guests.NewID()
	} else if err := owner.Validate(); err != nil {
		return nil, false, err
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, fmt.Errorf("product not found: %w", domain.ErrNotFound)
		}
		return nil, false, err
	}

	created := false
	cart, err := s.load(ctx, owner)
	if errors.Is(err, domain.ErrNotFound) {
		cart, created = domain.NewCart(owner), true
	} else if err != nil {
		return nil, false, err
	}

	if err := cart.AddItem(domain.LineItem{
		ProductID:  product.ID,
		Name:       product.Name,
		Image:      product.PrimaryImage(),
		PriceCents: product.PriceCents,
		Size:       in.Size,
		Color:      in.Color,
		Quantity:   in.Quantity,
	}); err != nil {
		return nil, false, err
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, false, err
	}
	s.logger.Printf("cart: add owner=%s product_id=%s qty=%d total=%d", owner, product.ID, in.Quantity, cart.TotalPriceCents)
	return cart, created, nil
}

// UpdateItemQuantity sets a line's quantity; zero or less removes the line.
func (s *Service) UpdateItemQuantity(ctx context.Context, owner domain.CartOwner, key domain.LineKey, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, owner, func(c *domain.Cart) error {
		return c.SetQuantity(key, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, owner domain.CartOwner, key domain.LineKey) (*domain.Cart, error) {
	return s.mutate(ctx, owner, func(c *domain.Cart) error {
		return c.RemoveItem(key)
	})
}

func (s *Service) mutate(ctx context.Context, owner domain.CartOwner, apply func(*domain.Cart) error) (*domain.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := apply(cart); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Merge folds the guest cart into the user's cart after login.
//
// Without a guest cart the user's cart is returned as-is. An empty guest cart
// is rejected. With both carts present the guest lines are merged into the
// user cart and the guest cart is deleted; a failed delete is only logged.
// A lone guest cart is handed over to the user.
func (s *Service) Merge(ctx context.Context, guestID, userID string) (*domain.Cart, error) {
	if guestID == "" || userID == "" {
		return nil, fmt.Errorf("%w: guestId and userId required", domain.ErrValidation)
	}

	guestCart, err := s.repo.GetByGuest(ctx, guestID)
	if errors.Is(err, domain.ErrNotFound) {
		userCart, err := s.repo.GetByUser(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("cart not found: %w", domain.ErrNotFound)
		}
		return userCart, err
	}
	if err != nil {
		return nil, err
	}
	if guestCart.IsEmpty() {
		return nil, fmt.Errorf("guest cart is empty: %w", domain.ErrInvalidState)
	}

	userCart, err := s.repo.GetByUser(ctx, userID)
	switch {
	case err == nil:
		userCart.MergeFrom(guestCart)
		if err := s.repo.Save(ctx, userCart); err != nil {
			return nil, err
		}
		if err := s.repo.Delete(ctx, guestCart.ID); err != nil {
			s.logger.Printf("cart: merge guest_id=%s delete guest cart id=%s error=%v", guestID, guestCart.ID, err)
		}
		s.logger.Printf("cart: merged guest_id=%s into user_id=%s lines=%d", guestID, userID, len(userCart.Items))
		s.publishMerged(ctx, userCart, guestID, false)
		return userCart, nil
	case errors.Is(err, domain.ErrNotFound):
		guestCart.AssignUser(userID)
		if err := s.repo.Save(ctx, guestCart); err != nil {
			return nil, err
		}
		s.logger.Printf("cart: reassigned guest_id=%s to user_id=%s", guestID, userID)
		s.publishMerged(ctx, guestCart, guestID, true)
		return guestCart, nil
	default:
		return nil, err
	}
}

// Clear deletes the user's cart. A missing cart is not an error.
func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.repo.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, cart.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	s.logger.Printf("cart: cleared user_id=%s cart_id=%s", userID, cart.ID)
	return nil
}

func (s *Service) load(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	var (
		cart *domain.Cart
		err  error
	)
	if owner.UserID != "" {
		cart, err = s.repo.GetByUser(ctx, owner.UserID)
	} else {
		cart, err = s.repo.GetByGuest(ctx, owner.GuestID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("cart not found: %w", domain.ErrNotFound)
	}
	return cart, err
}

type mergedPayload struct {
	CartID     string `json:"cartId"`
	UserID     string `json:"userId"`
	GuestID    string `json:"guestId"`
	Reassigned bool   `json:"reassigned"`
	Lines      int    `json:"lines"`
	TotalPrice int64  `json:"totalPrice"`
}

func (s *Service) publishMerged(ctx context.Context, cart *domain.Cart, guestID string, reassigned bool) {
	evt := events.NewEvent(events.TypeCartMerged, mergedPayload{
		CartID:     cart.ID,
		UserID:     cart.Owner().UserID,
		GuestID:    guestID,
		Reassigned: reassigned,
		Lines:      len(cart.Items),
		TotalPrice: cart.TotalPriceCents,
	})
	if err := s.events.Publish(ctx, events.TopicCart, cart.ID, evt); err != nil {
		s.logger.Printf("cart: publish %s cart_id=%s error=%v", evt.Type, cart.ID, err)
	}
}

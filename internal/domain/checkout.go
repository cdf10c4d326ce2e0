package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// CheckoutState is derived from the isPaid/isFinalized flags.
type CheckoutState string

const (
	CheckoutCreated   CheckoutState = "CREATED"
	CheckoutPaid      CheckoutState = "PAID"
	CheckoutFinalized CheckoutState = "FINALIZED"
)

type ShippingAddress struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// Checkout is a snapshot of a user's cart moving through payment.
type Checkout struct {
	ID               string                 `json:"_id"`
	UserID           string                 `json:"user"`
	Items            []LineItem             `json:"checkoutItems"`
	ShippingAddress  ShippingAddress        `json:"shippingAddress"`
	PaymentMethod    string                 `json:"paymentMethod"`
	TotalPriceCents  int64                  `json:"totalPrice"`
	IsPaid           bool                   `json:"isPaid"`
	PaidAt           *time.Time             `json:"paidAt,omitempty"`
	PaymentStatus    string                 `json:"paymentStatus"`
	PaymentDetails   map[string]interface{} `json:"paymentDetails,omitempty"`
	PaymentReference string                 `json:"paymentReference,omitempty"`
	IsFinalized      bool                   `json:"isFinalized"`
	FinalizedAt      *time.Time             `json:"finalizedAt,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// NewCheckout copies the cart's lines into a new unpaid checkout. The total is
// recomputed from the copied lines.
func NewCheckout(userID string, cart *Cart, addr ShippingAddress, paymentMethod string) (*Checkout, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, fmt.Errorf("cart is empty: %w", ErrInvalidState)
	}
	co := &Checkout{
		UserID:          userID,
		Items:           append([]LineItem(nil), cart.Items...),
		ShippingAddress: addr,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   PaymentStatusPending,
	}
	for _, item := range co.Items {
		co.TotalPriceCents += item.SubtotalCents()
	}
	return co, nil
}

func (c *Checkout) State() CheckoutState {
	switch {
	case c.IsFinalized:
		return CheckoutFinalized
	case c.IsPaid:
		return CheckoutPaid
	default:
		return CheckoutCreated
	}
}

// MarkPaid records the payment once. It reports false when the checkout was
// already paid, leaving paidAt and the stored details untouched.
func (c *Checkout) MarkPaid(status string, details map[string]interface{}, now time.Time) (bool, error) {
	if c.IsPaid {
		return false, nil
	}
	if !strings.EqualFold(strings.TrimSpace(status), PaymentStatusPaid) {
		return false, fmt.Errorf("%w: invalid payment status %q", ErrValidation, status)
	}
	paidAt := now.UTC()
	c.IsPaid = true
	c.PaidAt = &paidAt
	c.PaymentStatus = PaymentStatusPaid
	c.PaymentDetails = details
	return true, nil
}

// Finalize moves a paid checkout to FINALIZED. It reports false when the
// checkout was already finalized.
func (c *Checkout) Finalize(now time.Time) (bool, error) {
	if !c.IsPaid {
		return false, fmt.Errorf("checkout not paid: %w", ErrInvalidState)
	}
	if c.IsFinalized {
		return false, nil
	}
	at := now.UTC()
	c.IsFinalized = true
	c.FinalizedAt = &at
	return true, nil
}

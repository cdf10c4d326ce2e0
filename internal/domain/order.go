package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// ParseOrderStatus accepts only the four known statuses, matched exactly.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
}

// Order is the durable result of a finalized checkout.
type Order struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"user"`
	CheckoutID      string          `json:"checkout"`
	Items           []LineItem      `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	TotalPriceCents int64           `json:"totalPrice"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	PaymentStatus   string          `json:"paymentStatus"`
	Status          OrderStatus     `json:"status"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewOrderFromCheckout copies a finalized checkout into an order in Processing.
func NewOrderFromCheckout(co *Checkout) (*Order, error) {
	if !co.IsFinalized {
		return nil, fmt.Errorf("checkout not finalized: %w", ErrInvalidState)
	}
	return &Order{
		UserID:          co.UserID,
		CheckoutID:      co.ID,
		Items:           append([]LineItem(nil), co.Items...),
		ShippingAddress: co.ShippingAddress,
		PaymentMethod:   co.PaymentMethod,
		TotalPriceCents: co.TotalPriceCents,
		IsPaid:          co.IsPaid,
		PaidAt:          co.PaidAt,
		PaymentStatus:   co.PaymentStatus,
		Status:          OrderProcessing,
	}, nil
}

// SetStatus applies an admin status change. Any transition between known
// statuses is allowed. isDelivered always mirrors status == Delivered, and
// deliveredAt keeps the first delivery time while the order stays delivered.
func (o *Order) SetStatus(status OrderStatus, now time.Time) bool {
	if o.Status == status {
		return false
	}
	o.Status = status
	if status == OrderDelivered {
		at := now.UTC()
		o.IsDelivered = true
		o.DeliveredAt = &at
	} else {
		o.IsDelivered = false
		o.DeliveredAt = nil
	}
	return true
}

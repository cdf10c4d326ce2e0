package domain

import (
	"fmt"
	"time"
)

// CartOwner identifies who a cart belongs to. Exactly one field is set.
type CartOwner struct {
	UserID  string
	GuestID string
}

// Validate reports ErrValidation unless exactly one identity is present.
func (o CartOwner) Validate() error {
	switch {
	case o.UserID != "" && o.GuestID != "":
		return fmt.Errorf("%w: provide either userId or guestId, not both", ErrValidation)
	case o.UserID == "" && o.GuestID == "":
		return fmt.Errorf("%w: userId or guestId required", ErrValidation)
	}
	return nil
}

func (o CartOwner) IsGuest() bool {
	return o.UserID == "" && o.GuestID != ""
}

func (o CartOwner) String() string {
	if o.UserID != "" {
		return "user:" + o.UserID
	}
	return "guest:" + o.GuestID
}

// LineKey is the identity of a line item within a cart.
type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

// LineItem is a product variant in a cart, checkout or order. Name, image and
// price are captured when the item is first added.
type LineItem struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	PriceCents int64  `json:"price"`
	Size       string `json:"size,omitempty"`
	Color      string `json:"color,omitempty"`
	Quantity   int    `json:"quantity"`
}

func (l LineItem) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

func (l LineItem) SubtotalCents() int64 {
	return l.PriceCents * int64(l.Quantity)
}

// Cart is the mutable basket of one user or one guest.
type Cart struct {
	ID              string     `json:"_id"`
	UserID          *string    `json:"user,omitempty"`
	GuestID         *string    `json:"guestId,omitempty"`
	Items           []LineItem `json:"products"`
	TotalPriceCents int64      `json:"totalPrice"`
	Version         int        `json:"version"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// NewCart returns an empty, unsaved cart for owner.
func NewCart(owner CartOwner) *Cart {
	c := &Cart{Items: []LineItem{}}
	if owner.UserID != "" {
		id := owner.UserID
		c.UserID = &id
	} else {
		id := owner.GuestID
		c.GuestID = &id
	}
	return c
}

func (c *Cart) Owner() CartOwner {
	var o CartOwner
	if c.UserID != nil {
		o.UserID = *c.UserID
	}
	if c.GuestID != nil {
		o.GuestID = *c.GuestID
	}
	return o
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) find(key LineKey) int {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return i
		}
	}
	return -1
}

// Item returns the line item matching key.
func (c *Cart) Item(key LineKey) (LineItem, bool) {
	if i := c.find(key); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// AddItem increments the matching line or appends item as a new line.
// An existing line keeps its captured price.
func (c *Cart) AddItem(item LineItem) error {
	if item.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if i := c.find(item.Key()); i >= 0 {
		c.Items[i].Quantity += item.Quantity
	} else {
		c.Items = append(c.Items, item)
	}
	c.Recalculate()
	return nil
}

// SetQuantity overwrites the quantity of a line; quantity <= 0 removes it.
func (c *Cart) SetQuantity(key LineKey, quantity int) error {
	i := c.find(key)
	if i < 0 {
		return fmt.Errorf("product not found in cart: %w", ErrNotFound)
	}
	if quantity > 0 {
		c.Items[i].Quantity = quantity
	} else {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
	c.Recalculate()
	return nil
}

func (c *Cart) RemoveItem(key LineKey) error {
	i := c.find(key)
	if i < 0 {
		return fmt.Errorf("product not found in cart: %w", ErrNotFound)
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Recalculate()
	return nil
}

// MergeFrom folds src into c. Quantities of shared lines are summed and keep
// c's price; lines only in src are appended as they are.
func (c *Cart) MergeFrom(src *Cart) {
	index := make(map[LineKey]int, len(c.Items))
	for i, item := range c.Items {
		index[item.Key()] = i
	}
	for _, item := range src.Items {
		if i, ok := index[item.Key()]; ok {
			c.Items[i].Quantity += item.Quantity
			continue
		}
		index[item.Key()] = len(c.Items)
		c.Items = append(c.Items, item)
	}
	c.Recalculate()
}

// AssignUser moves a guest cart to userID and drops the guest identity.
func (c *Cart) AssignUser(userID string) {
	id := userID
	c.UserID = &id
	c.GuestID = nil
}

// Recalculate derives TotalPriceCents from the line items.
func (c *Cart) Recalculate() {
	var total int64
	for _, item := range c.Items {
		total += item.SubtotalCents()
	}
	c.TotalPriceCents = total
}

// Clone returns a deep copy so callers can mutate without touching c.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = append([]LineItem(nil), c.Items...)
	if c.UserID != nil {
		id := *c.UserID
		cp.UserID = &id
	}
	if c.GuestID != nil {
		id := *c.GuestID
		cp.GuestID = &id
	}
	return &cp
}

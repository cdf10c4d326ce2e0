package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type cartIdentity struct {
	UserID  string `json:"userId" form:"userId"`
	GuestID string `json:"guestId" form:"guestId"`
}

type addToCartRequest struct {
	cartIdentity
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type updateCartRequest struct {
	cartIdentity
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type removeFromCartRequest struct {
	cartIdentity
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type mergeCartRequest struct {
	GuestID string `json:"guestId" binding:"required"`
}

// cartOwner applies the identity rules: a userId must be the caller's own, a
// guestId must be one this server issues, and without either the caller's
// account is used when signed in. The zero owner means anonymous.
func (h *handlers) cartOwner(c *gin.Context, id cartIdentity) (domain.CartOwner, error) {
	if id.UserID != "" && id.GuestID != "" {
		return domain.CartOwner{}, fmt.Errorf("%w: provide either userId or guestId, not both", domain.ErrValidation)
	}
	u, authed := currentUser(c)
	switch {
	case id.UserID != "":
		if !authed {
			return domain.CartOwner{}, fmt.Errorf("%w: sign in to use a user cart", domain.ErrUnauthorized)
		}
		if u.ID != id.UserID {
			return domain.CartOwner{}, fmt.Errorf("%w: cart belongs to another user", domain.ErrForbidden)
		}
		return domain.CartOwner{UserID: u.ID}, nil
	case id.GuestID != "":
		if !h.deps.Guests.Valid(id.GuestID) {
			return domain.CartOwner{}, fmt.Errorf("%w: malformed guestId", domain.ErrValidation)
		}
		return domain.CartOwner{GuestID: id.GuestID}, nil
	case authed:
		return domain.CartOwner{UserID: u.ID}, nil
	}
	return domain.CartOwner{}, nil
}

func (h *handlers) getCart(c *gin.Context) {
	var id cartIdentity
	if err := c.ShouldBindQuery(&id); err != nil {
		badRequest(c, "invalid query: "+err.Error())
		return
	}
	owner, err := h.cartOwner(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	cart, err := h.deps.CartSvc.Get(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) addToCart(c *gin.Context) {
	var req addToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, err := h.cartOwner(c, req.cartIdentity)
	if err != nil {
		writeError(c, err)
		return
	}
	cart, created, err := h.deps.CartSvc.AddItem(c.Request.Context(), owner, cartsvc.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, cart)
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateCartRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, err := h.cartOwner(c, req.cartIdentity)
	if err != nil {
		writeError(c, err)
		return
	}
	key := domain.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	cart, err := h.deps.CartSvc.UpdateItemQuantity(c.Request.Context(), owner, key, *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	var req removeFromCartRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, err := h.cartOwner(c, req.cartIdentity)
	if err != nil {
		writeError(c, err)
		return
	}
	key := domain.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	cart, err := h.deps.CartSvc.RemoveItem(c.Request.Context(), owner, key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) mergeCart(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var req mergeCartRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.deps.Guests.Valid(req.GuestID) {
		writeError(c, fmt.Errorf("%w: malformed guestId", domain.ErrValidation))
		return
	}
	cart, err := h.deps.CartSvc.Merge(c.Request.Context(), req.GuestID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutsvc "storefront/internal/service/checkout"
)

// beginCheckoutRequest ignores any items or totals the client sends; the
// checkout is built from the stored cart.
type beginCheckoutRequest struct {
	checkoutsvc.BeginInput
}

type payCheckoutRequest struct {
	PaymentStatus  string                 `json:"paymentStatus" binding:"required"`
	PaymentDetails map[string]interface{} `json:"paymentDetails"`
}

func (h *handlers) beginCheckout(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var req beginCheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	co, err := h.deps.CheckoutSvc.Begin(c.Request.Context(), userID, req.BeginInput)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, co)
}

func (h *handlers) getCheckout(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	co, err := h.deps.CheckoutSvc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, co)
}

func (h *handlers) payCheckout(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var req payCheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	co, err := h.deps.CheckoutSvc.MarkPaid(c.Request.Context(), c.Param("id"), userID, req.PaymentStatus, req.PaymentDetails)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, co)
}

func (h *handlers) finalizeCheckout(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	order, created, err := h.deps.CheckoutSvc.Finalize(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, order)
}

package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handlers) myOrders(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	orders, err := h.deps.OrderSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

// getOrder serves both the owner route and the admin route; the service
// decides visibility from the caller's role.
func (h *handlers) getOrder(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return
	}
	order, err := h.deps.OrderSvc.Get(c.Request.Context(), c.Param("id"), *u)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) adminListOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

func (h *handlers) adminUpdateOrder(c *gin.Context) {
	var req orderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.deps.OrderSvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) adminDeleteOrder(c *gin.Context) {
	if err := h.deps.OrderSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order removed"})
}

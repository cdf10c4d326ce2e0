package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	deps      Deps
	logger    *log.Logger
	maxUpload int64
}

// bindJSON decodes the request body or answers 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// mustUser returns the authenticated user, answering 401 when there is none.
func mustUser(c *gin.Context) (string, bool) {
	u, ok := currentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return "", false
	}
	return u.ID, true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

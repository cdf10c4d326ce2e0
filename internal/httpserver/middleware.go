package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
)

type ctxKey string

const userCtxKey ctxKey = "user"

// authenticate resolves the bearer token to a user. With required set a
// missing or invalid token is rejected; otherwise the request continues
// anonymously.
func authenticate(users UserService, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized, no token"})
				return
			}
			c.Next()
			return
		}
		u, err := users.LookupByToken(c.Request.Context(), token)
		if err != nil {
			if required {
				writeError(c, err)
				return
			}
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userCtxKey, u))
		c.Next()
	}
}

// requireRole admits only authenticated users holding role.
func requireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}
		if u.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "not authorized as " + string(role)})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (*domain.User, bool) {
	u, ok := c.Request.Context().Value(userCtxKey).(*domain.User)
	return u, ok && u != nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/courtside-dev/stadium-booking/internal/service"
)

const identityKey = "identity"

// Auth проверяет Bearer-токен и кладёт Identity вызывающего в контекст.
func Auth(identity *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		id, err := identity.ParseToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireAdmin пропускает только администратора. Ставится после Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !callerIdentity(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func callerIdentity(c *gin.Context) service.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(service.Identity)
	return id
}

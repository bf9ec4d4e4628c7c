package middleware

import (
	"net/http"
	"strings"

	"powerpay-gateway/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireAuth.
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextRole     = "role"
)

// RequireAuth validates the Bearer access token and stores the caller's
// identity on the gin context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")))
		if err != nil || claims.Type != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole allows only callers whose role is one of the given ones. Must
// run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied"})
	}
}

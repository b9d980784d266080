package middleware

import (
	"context"
	"net/http"
	"strings"

	"townhall/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates the bearer token, rejects revoked tokens and
// sets userID and role in the request context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		userID, role, err := utils.ExtractClaimsFromToken(tokenString)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		revoked, err := utils.IsTokenRevoked(context.Background(), utils.HashToken(tokenString))
		if err == nil && revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token revoked"})
			return
		}

		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Set("authToken", tokenString)
		c.Next()
	}
}

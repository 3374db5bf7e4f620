package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/projecthub/submission-backend/internal/auth"
	"github.com/projecthub/submission-backend/internal/logging"
)

// BearerAuth validates the bearer token and stores the caller's claims in the context
func BearerAuth(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logging.NewLogger(c.Request.Context()).LogWarnf("bearer_auth", "token rejected: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(auth.CtxFirebaseUID, claims.UID)
		if claims.Email != "" {
			c.Set(auth.CtxEmail, claims.Email)
			c.Set(auth.CtxEmailVerified, claims.EmailVerified)
		}
		if claims.Name != "" {
			c.Set(auth.CtxDisplayName, claims.Name)
		}

		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}

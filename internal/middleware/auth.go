package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ServanaApplication/servana-backend/internal/auth"
)

// Context keys set by the auth middlewares.
const (
	ContextKeyUserID   = "userID"
	ContextKeyClientID = "clientID"
	ContextKeyRoleID   = "roleID"
)

// AccessCookie is the agent-console session cookie name.
const AccessCookie = "access_token"

// AgentAuth validates the session cookie issued by POST /auth/login and puts
// the agent's identity on the request context.
func AgentAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AccessCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := auth.ParseToken(token, secret)
		if err != nil || claims.Kind != auth.KindAgent {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRoleID, claims.RoleID)
		c.Next()
	}
}

// ClientAuth validates a client bearer token, from the Authorization header.
func ClientAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil || claims.Kind != auth.KindClient {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextKeyClientID, claims.UserID)
		c.Next()
	}
}

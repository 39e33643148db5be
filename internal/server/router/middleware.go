package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/posgate/internal/server/handlers"
	"github.com/mamadbah2/posgate/internal/service/auth"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// requireSession resolves the bearer token to a session and aborts with 401
// when there is none.
func requireSession(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		session, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set(handlers.ContextTokenKey, token)
		c.Set(handlers.ContextSessionKey, session)
		c.Next()
	}
}

// optionalSession resolves a session when a token is present but lets
// anonymous requests through.
func optionalSession(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if session, err := authenticator.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(handlers.ContextTokenKey, token)
				c.Set(handlers.ContextSessionKey, session)
			}
		}
		c.Next()
	}
}

// requireResource evaluates the authorization policy for the resolved
// session's role before the handler runs.
func requireResource(resource auth.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := handlers.SessionFrom(c)
		if !ok || !auth.Allow(session.Role, resource) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

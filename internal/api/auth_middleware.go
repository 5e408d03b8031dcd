package api

import (
	"net/http"
	"strings"

	"github.com/avesovich/reporting-with-rss-news/internal/auth"
	"github.com/avesovich/reporting-with-rss-news/internal/policy"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ctxActorID   = "actor_id"
	ctxActorName = "actor_name"
	ctxActorRole = "actor_role"
)

// AuthMiddleware validates the bearer token and stores the actor's
// identity on the context. Requests without a valid token are rejected
// before reaching any handler.
func AuthMiddleware(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			Error(c, http.StatusUnauthorized, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			Error(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ctxActorID, claims.UserID)
		c.Set(ctxActorName, claims.Name)
		c.Set(ctxActorRole, claims.Role)
		c.Next()
	}
}

// currentActor reads the authenticated actor from the context.
func currentActor(c *gin.Context) *policy.Actor {
	return &policy.Actor{
		ID:   c.GetString(ctxActorID),
		Name: c.GetString(ctxActorName),
		Role: c.GetString(ctxActorRole),
	}
}

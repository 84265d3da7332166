package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKeyUserID = "user_id"

// UserIDFromContext returns the current user ID set by RequireAuth.
// uuid.Nil if not set.
func UserIDFromContext(c *gin.Context) uuid.UUID {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// RequireAuth returns a middleware that checks for a valid bearer token and
// sets the current user ID in context. If missing or invalid, responds
// with 401.
func RequireAuth(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		userID, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const errUnauthorized = "Unauthorized"

// tokenVerifier is the subset of auth.TokenIssuer the middleware needs.
type tokenVerifier interface {
	Verify(raw string) (string, error)
}

// Auth validates a Bearer session token and sets "userID" in the gin
// context. Every failure mode returns the same 401 body.
func Auth(tokens tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		userID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

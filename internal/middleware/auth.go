package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-project/backend/internal/types"
)

// TokenValidator is an interface for validating JWT tokens.
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// Auth rejects requests without a valid Bearer token and stores the
// authenticated identity in the context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromHeader(c, validator)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through. List endpoints need it: their relation filters
// and derived flags depend on the viewer but never require one.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := claimsFromHeader(c, validator); err == nil {
			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
		}
		c.Next()
	}
}

// CurrentViewer returns the request identity, anonymous when no valid token
// was attached.
func CurrentViewer(c *gin.Context) types.Viewer {
	v, exists := c.Get("user_id")
	if !exists {
		return types.AnonymousViewer()
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return types.AnonymousViewer()
	}
	return types.Viewer{ID: id}
}

func claimsFromHeader(c *gin.Context, validator TokenValidator) (*types.TokenClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errMissingAuth
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errBadAuthFormat
	}

	return validator.ValidateToken(parts[1])
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errMissingAuth   = authError("missing authorization header")
	errBadAuthFormat = authError("invalid authorization header format")
)

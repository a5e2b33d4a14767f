package middleware

import (
	"context"
	"strings"

	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuth
const (
	StudentIDKey = "studentID"
	EmailKey     = "email"
	ClaimsKey    = "claims"
)

var errAuthRequired = apperrors.NewCustomError(apperrors.ErrUnauthorized, "Authentication required")

// Authenticator validates a bearer token and its session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// tokenFromHeader accepts "Bearer <jwt>" and, for Swagger UI convenience, a bare JWT
func tokenFromHeader(header string) (string, error) {
	header = strings.Trim(strings.TrimSpace(header), "\"'")
	if strings.Count(header, ".") == 2 && !strings.Contains(header, " ") {
		return header, nil
	}
	return auth.ExtractBearerToken(header)
}

// JWTAuth rejects requests without a valid token and live session
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			HandleAPIError(c, errAuthRequired.WithDetail("Authorization header missing"))
			return
		}

		token, err := tokenFromHeader(authHeader)
		if err != nil {
			HandleAPIError(c, errAuthRequired.WithDetail("Invalid token format"))
			return
		}

		claims, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(StudentIDKey, claims.StudentID)
		c.Set(EmailKey, claims.Email)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by JWTAuth
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// StudentIDFromContext returns the authenticated student's id
func StudentIDFromContext(c *gin.Context) (int64, bool) {
	value, exists := c.Get(StudentIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

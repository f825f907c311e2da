package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/accordfamily/accord-backend/internal/usecase/auth"
)

const (
	// UserContextKey is the echo context key for the authenticated user
	UserContextKey = "user"
	// TokenContextKey is the echo context key for the raw bearer token
	TokenContextKey = "access_token"
)

// AuthMiddleware resolves bearer tokens into authenticated users
type AuthMiddleware struct {
	auth *auth.Service
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{auth: authService}
}

// Authenticate validates the bearer token and stores the user in the
// request context. Requests without a valid token are rejected before any
// handler runs.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
		}

		user, err := m.auth.Resolve(c.Request().Context(), token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set(UserContextKey, user)
		c.Set(TokenContextKey, token)
		return next(c)
	}
}

func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

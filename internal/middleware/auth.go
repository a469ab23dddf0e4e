package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ukydev/garage-logbook/internal/auth"
	"github.com/ukydev/garage-logbook/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	OwnerContextKey contextKey = "owner"
)

// skipPaths are reachable without a token.
var skipPaths = []string{
	"/api/auth/login",
	"/api/auth/setup",
	"/health",
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate validates JWT tokens and adds the owner claims to the context.
// Websocket clients cannot set headers, so a "token" query parameter is
// accepted as well.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("Authorization")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), OwnerContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwnerFromContext extracts owner claims from request context
func GetOwnerFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(OwnerContextKey).(*models.Claims)
	return claims, ok
}

func shouldSkipAuth(path string) bool {
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

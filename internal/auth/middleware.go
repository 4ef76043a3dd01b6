package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the request-scoped identity resolved from a bearer token.
// Roles come from the live user record, never from the token payload.
type Principal struct {
	User  *domain.User
	Roles []domain.RoleName
}

// AuthMiddleware extracts bearer tokens and loads principals. It is
// deliberately permissive: a missing, malformed, forged or expired token
// leaves the request anonymous and the route guards make the actual
// allow/deny decision. Public routes therefore need no special-casing.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger}
}

// Handle resolves the caller's identity for the rest of the request.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if _, ok := PrincipalFromContext(c); ok {
		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Next()
	}

	claims, err := m.tokens.Parse(parts[1])
	if err != nil {
		m.logger.Debug("discarding bearer token", zap.Error(err))
		return c.Next()
	}

	user, err := m.users.GetByUsername(c.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			m.logger.Debug("token subject no longer exists", zap.String("subject", claims.Subject))
			return c.Next()
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, Roles: user.Roles})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/domain"
	apperrors "github.com/spec-kit/shop-service/pkg/util"
)

// RequireAuthenticated ensures the caller carries any valid identity.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRole ensures the caller is authenticated and holds at least one of
// the allowed roles. An empty allowed set admits any authenticated caller.
// Anonymous callers get 401, authenticated callers without a matching role
// get 403, so clients can tell the two apart.
func RequireRole(allowed ...domain.RoleName) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowed) == 0 {
			return c.Next()
		}
		if !domain.HasRole(principal.Roles, allowed...) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

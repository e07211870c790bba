package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/domain"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// RequireRole ensures the principal carries one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("Please login to access this resource")
		}
		if len(allowed) == 0 || principal.Account.HasRole(allowed...) {
			return c.Next()
		}
		return apperrors.NewForbidden(fmt.Sprintf("Role (%s) is not allowed to access this resource", principal.Account.Role))
	}
}

// RequireAuthenticated ensures the caller passed the auth middleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthenticated("Please login to access this resource")
		}
		return c.Next()
	}
}

package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/ticketing/internal/domain"
	"github.com/helpdesk-kit/ticketing/internal/policy"
	apperrors "github.com/helpdesk-kit/ticketing/pkg/util"
)

// RequireRole gates a route behind the role hierarchy: the authenticated
// user must rank at least as high as required.
func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !policy.RoleAtLeast(user.Role, required) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

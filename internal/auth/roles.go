package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nexis/campus-services/internal/domain"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

// RequireRole ensures the caller's role claim is one of the allowed roles.
// A missing or unparseable role denies; the sentinel never grants access.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		claims, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}

		role := domain.ParseRole(claims.Role)
		if role == domain.RoleInvalid {
			return apperrors.NewForbidden("unknown role")
		}
		if _, exists := allowedSet[role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

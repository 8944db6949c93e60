package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/navigation"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// RequireRoles ensures the principal has one of the allowed roles.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := domain.NewRoleSet(allowed...)

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if !allowedSet.Contains(principal.Identity.Role) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}

// GroupGuard gates a route group the way the screens do: callers outside the
// group get a replace-redirect to their own landing route instead of an error.
func GroupGuard(group navigation.Group) fiber.Handler {
	required, ok := navigation.RequiredRoles(group)
	if !ok {
		panic("auth: unknown route group " + string(group))
	}

	return func(c *fiber.Ctx) error {
		session := SessionFromContext(c)
		decision := navigation.Evaluate(session, required)
		if decision.Action == navigation.ActionRender {
			return c.Next()
		}

		status := http.StatusForbidden
		if !session.IsAuthenticated {
			status = http.StatusUnauthorized
		}
		c.Set(fiber.HeaderLocation, decision.Route)
		return c.Status(status).JSON(fiber.Map{"redirect": decision})
	}
}

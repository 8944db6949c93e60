package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fieldops/internal/auth"
	"github.com/spec-kit/fieldops/internal/navigation"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// NavigationHandler reports guard decisions so thin clients can route
// without holding the role table.
type NavigationHandler struct{}

// NewNavigationHandler constructs handler.
func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

// Decide handles GET /navigation/:group.
func (h *NavigationHandler) Decide(c *fiber.Ctx) error {
	group := navigation.Group(c.Params("group"))
	required, ok := navigation.RequiredRoles(group)
	if !ok {
		return apperrors.NewNotFound("route group", map[string]any{"group": group})
	}
	decision := navigation.Evaluate(auth.SessionFromContext(c), required)
	return c.JSON(fiber.Map{"data": decision})
}

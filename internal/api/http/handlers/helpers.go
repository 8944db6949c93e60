package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/fieldops/internal/auth"
	"github.com/spec-kit/fieldops/internal/domain"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

func currentIdentity(c *fiber.Ctx) (*domain.Identity, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Identity, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// parsePage turns page/page_size query params into limit and offset. Without
// page_size every row is returned.
func parsePage(c *fiber.Ctx) (limit, offset int) {
	pageSize := parseInt(c.Query("page_size"), 0)
	if pageSize == 0 {
		return 0, 0
	}
	page := parseInt(c.Query("page"), 1)
	return pageSize, (page - 1) * pageSize
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func optionalString(val string) *string {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}

// pathID returns the :id route parameter. Ids that are not UUIDs cannot name
// a stored record and answer NOT_FOUND without touching the database.
func pathID(c *fiber.Ctx, resource string) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return id, nil
}

// validateID rejects a non-UUID reference supplied in a body or query field.
func validateID(field string, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		return apperrors.NewValidationError("invalid id", map[string]any{field: *id})
	}
	return nil
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fieldops/internal/api/dto"
	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/service"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// SettingsHandler serves the caller's notification settings.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: settingsService}
}

// Get GET /me/settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	current, err := h.service.Get(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[domain.NotificationSettings]{Data: current})
}

// Update PUT /me/settings.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.service.Update(c.UserContext(), identity, req)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[domain.NotificationSettings]{Data: updated})
}

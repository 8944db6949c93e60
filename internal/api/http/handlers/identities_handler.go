package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fieldops/internal/api/dto"
	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/service"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// IdentitiesHandler serves the admin identity endpoints.
type IdentitiesHandler struct {
	service *service.IdentityService
}

// NewIdentitiesHandler constructs handler.
func NewIdentitiesHandler(identityService *service.IdentityService) *IdentitiesHandler {
	return &IdentitiesHandler{service: identityService}
}

// List GET /admin/identities.
func (h *IdentitiesHandler) List(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	filter := service.IdentityListFilters{}
	if role := c.Query("role"); role != "" {
		r := domain.Role(role)
		filter.Role = &r
	}
	if active := c.Query("active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			return apperrors.NewValidationError("active must be a boolean", nil)
		}
		filter.Active = &parsed
	}
	filter.Limit, filter.Offset = parsePage(c)

	identities, err := h.service.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.IdentityResponse, 0, len(identities))
	for i := range identities {
		items = append(items, dto.NewIdentityResponse(&identities[i]))
	}
	return c.JSON(dto.DataResponse[[]dto.IdentityResponse]{Data: items})
}

// Create POST /admin/identities.
func (h *IdentitiesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateIdentityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	identity, err := h.service.Create(c.UserContext(), actor, service.IdentityCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.IdentityResponse]{Data: dto.NewIdentityResponse(identity)})
}

// SetActive POST /admin/identities/:id/active.
func (h *IdentitiesHandler) SetActive(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "identity")
	if err != nil {
		return err
	}
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return apperrors.NewValidationError("active required", nil)
	}
	identity, err := h.service.SetActive(c.UserContext(), actor, id, *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.IdentityResponse]{Data: dto.NewIdentityResponse(identity)})
}

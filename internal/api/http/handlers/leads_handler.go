package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fieldops/internal/api/dto"
	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/service"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// LeadsHandler manages lead endpoints.
type LeadsHandler struct {
	service *service.LeadService
}

// NewLeadsHandler constructs handler.
func NewLeadsHandler(leadService *service.LeadService) *LeadsHandler {
	return &LeadsHandler{service: leadService}
}

// List GET /leads.
func (h *LeadsHandler) List(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	filter := service.LeadListFilters{Search: optionalString(c.Query("q"))}
	for _, status := range splitList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.LeadStatus(status))
	}
	filter.Limit, filter.Offset = parsePage(c)

	leads, err := h.service.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.LeadResponse, 0, len(leads))
	for i := range leads {
		items = append(items, dto.NewLeadResponse(&leads[i]))
	}
	return c.JSON(dto.DataResponse[[]dto.LeadResponse]{Data: items})
}

// Create POST /leads.
func (h *LeadsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	lead, err := h.service.Create(c.UserContext(), actor, service.LeadCreateInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.LeadResponse]{Data: dto.NewLeadResponse(lead)})
}

// Get GET /leads/:id.
func (h *LeadsHandler) Get(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "lead")
	if err != nil {
		return err
	}
	lead, err := h.service.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.LeadResponse]{Data: dto.NewLeadResponse(lead)})
}

// UpdateStatus POST /leads/:id/status.
func (h *LeadsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "lead")
	if err != nil {
		return err
	}
	var req dto.UpdateLeadStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	lead, err := h.service.UpdateStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.LeadResponse]{Data: dto.NewLeadResponse(lead)})
}

// Convert POST /leads/:id/convert.
func (h *LeadsHandler) Convert(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "lead")
	if err != nil {
		return err
	}
	var req dto.ConvertLeadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if err := validateID("technician_id", req.TechnicianID); err != nil {
		return err
	}
	customer, err := h.service.Convert(c.UserContext(), actor, id, service.ConvertLeadInput{
		SystemSizeKW: req.SystemSizeKW,
		TechnicianID: req.TechnicianID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.CustomerResponse]{Data: dto.NewCustomerResponse(customer)})
}

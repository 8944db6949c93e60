package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fieldops/internal/api/dto"
	"github.com/spec-kit/fieldops/internal/service"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// CustomersHandler serves customer and work-tracking endpoints.
type CustomersHandler struct {
	service *service.WorkService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(workService *service.WorkService) *CustomersHandler {
	return &CustomersHandler{service: workService}
}

// List GET /customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	filter := service.CustomerListFilters{TechnicianID: optionalString(c.Query("technician_id"))}
	if err := validateID("technician_id", filter.TechnicianID); err != nil {
		return err
	}
	filter.Limit, filter.Offset = parsePage(c)

	customers, err := h.service.ListCustomers(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, dto.NewCustomerResponse(&customers[i]))
	}
	return c.JSON(dto.DataResponse[[]dto.CustomerResponse]{Data: items})
}

// Summary GET /summary.
func (h *CustomersHandler) Summary(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	summary, err := h.service.Summary(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.SummaryResponse]{Data: dto.SummaryResponse{
		Leads:         summary.Leads,
		Customers:     summary.Customers,
		LeadsByStatus: summary.LeadsByStatus,
	}})
}

// AssignTechnician POST /admin/customers/:id/technician.
func (h *CustomersHandler) AssignTechnician(c *fiber.Ctx) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "customer")
	if err != nil {
		return err
	}
	var req dto.AssignTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateID("technician_id", req.TechnicianID); err != nil {
		return err
	}
	customer, err := h.service.AssignTechnician(c.UserContext(), actor, id, req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.CustomerResponse]{Data: dto.NewCustomerResponse(customer)})
}

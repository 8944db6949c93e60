package dto

import (
	"time"

	"github.com/spec-kit/fieldops/internal/domain"
)

// CreateLeadRequest payload.
type CreateLeadRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// UpdateLeadStatusRequest payload.
type UpdateLeadStatusRequest struct {
	Status domain.LeadStatus `json:"status"`
}

// ConvertLeadRequest payload.
type ConvertLeadRequest struct {
	SystemSizeKW float64 `json:"system_size_kw"`
	TechnicianID *string `json:"technician_id"`
}

// AssignTechnicianRequest payload. A null technician clears the assignment.
type AssignTechnicianRequest struct {
	TechnicianID *string `json:"technician_id"`
}

// LeadResponse is the public view of a lead.
type LeadResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Email     string            `json:"email"`
	Address   string            `json:"address"`
	Notes     string            `json:"notes"`
	Status    domain.LeadStatus `json:"status"`
	CreatedBy string            `json:"created_by"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CustomerResponse is the public view of a customer.
type CustomerResponse struct {
	ID           string     `json:"id"`
	LeadID       *string    `json:"lead_id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Address      string     `json:"address"`
	SystemSizeKW float64    `json:"system_size_kw"`
	TechnicianID *string    `json:"technician_id"`
	InstalledAt  *time.Time `json:"installed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SummaryResponse counts the records visible to the caller.
type SummaryResponse struct {
	Leads         int                       `json:"leads"`
	Customers     int                       `json:"customers"`
	LeadsByStatus map[domain.LeadStatus]int `json:"leads_by_status"`
}

// NewLeadResponse maps a domain lead.
func NewLeadResponse(lead *domain.Lead) LeadResponse {
	return LeadResponse{
		ID:        lead.ID,
		Name:      lead.Name,
		Phone:     lead.Phone,
		Email:     lead.Email,
		Address:   lead.Address,
		Notes:     lead.Notes,
		Status:    lead.Status,
		CreatedBy: lead.CreatedBy,
		CreatedAt: lead.CreatedAt,
		UpdatedAt: lead.UpdatedAt,
	}
}

// Domain converts the response back into a domain lead.
func (r LeadResponse) Domain() domain.Lead {
	return domain.Lead{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
		Notes:     r.Notes,
		Status:    r.Status,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// NewCustomerResponse maps a domain customer.
func NewCustomerResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           customer.ID,
		LeadID:       customer.LeadID,
		Name:         customer.Name,
		Phone:        customer.Phone,
		Email:        customer.Email,
		Address:      customer.Address,
		SystemSizeKW: customer.SystemSizeKW,
		TechnicianID: customer.TechnicianID,
		InstalledAt:  customer.InstalledAt,
		CreatedAt:    customer.CreatedAt,
	}
}

// Domain converts the response back into a domain customer.
func (r CustomerResponse) Domain() domain.Customer {
	return domain.Customer{
		ID:           r.ID,
		LeadID:       r.LeadID,
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		Address:      r.Address,
		SystemSizeKW: r.SystemSizeKW,
		TechnicianID: r.TechnicianID,
		InstalledAt:  r.InstalledAt,
		CreatedAt:    r.CreatedAt,
	}
}

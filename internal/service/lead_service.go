package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/events"
	"github.com/spec-kit/fieldops/internal/repository"
	"github.com/spec-kit/fieldops/internal/scope"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// LeadService handles lead intake, status changes and conversion.
type LeadService struct {
	leads     repository.LeadRepository
	customers repository.CustomerRepository
	events    publisher
	logger    *zap.Logger
}

// LeadCreateInput describes a new lead.
type LeadCreateInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Notes   string
}

// LeadListFilters define listing parameters.
type LeadListFilters struct {
	Statuses []domain.LeadStatus
	Search   *string
	Limit    int
	Offset   int
}

// ConvertLeadInput carries the installation details of a converted lead.
type ConvertLeadInput struct {
	SystemSizeKW float64
	TechnicianID *string
}

var leadWriters = domain.NewRoleSet(domain.RoleSalesman, domain.RoleCallOperator, domain.RoleTeamLead, domain.RoleSuperAdmin)

// NewLeadService constructs the service.
func NewLeadService(leads repository.LeadRepository, customers repository.CustomerRepository, dispatcher events.Dispatcher, logger *zap.Logger) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{
		leads:     leads,
		customers: customers,
		events:    publisher{dispatcher: dispatcher, logger: logger},
		logger:    logger,
	}
}

// Create records a lead owned by actor.
func (s *LeadService) Create(ctx context.Context, actor *domain.Identity, input LeadCreateInput) (*domain.Lead, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !leadWriters.Contains(actor.Role) {
		return nil, apperrors.NewForbidden("role cannot create leads")
	}
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	if phone == "" && strings.TrimSpace(input.Email) == "" {
		return nil, apperrors.NewValidationError("phone or email is required", nil)
	}

	lead := &domain.Lead{
		Name:      name,
		Phone:     phone,
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Address:   strings.TrimSpace(input.Address),
		Notes:     strings.TrimSpace(input.Notes),
		Status:    domain.LeadStatusNew,
		CreatedBy: actor.ID,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.events.publish(ctx, events.Event{
		Type:      events.EventLeadCreated,
		SubjectID: lead.ID,
		Actor:     actorOf(actor),
		Payload:   events.LeadCreatedPayload{Name: lead.Name, CreatedBy: lead.CreatedBy},
	})
	return lead, nil
}

// List returns the leads visible to actor. Salesmen and call operators only
// see their own leads.
func (s *LeadService) List(ctx context.Context, actor *domain.Identity, filter LeadListFilters) ([]domain.Lead, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !leadWriters.Contains(actor.Role) {
		return nil, apperrors.NewForbidden("role cannot view leads")
	}
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
		}
	}

	repoFilter := repository.LeadFilter{
		Statuses:   filter.Statuses,
		SearchTerm: filter.Search,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	viewer := scope.Viewer(actor)
	if viewer != nil {
		repoFilter.CreatedBy = &viewer.ID
	}
	leads, err := s.leads.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return scope.LeadsCreatedBy(leads, viewer), nil
}

// Get returns a lead if actor may see it.
func (s *LeadService) Get(ctx context.Context, actor *domain.Identity, id string) (*domain.Lead, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !leadWriters.Contains(actor.Role) {
		return nil, apperrors.NewForbidden("role cannot view leads")
	}
	lead, err := s.loadLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if scope.Restricted(actor.Role) && lead.CreatedBy != actor.ID {
		// Restricted roles cannot tell foreign leads from missing ones.
		return nil, apperrors.NewNotFound("lead", map[string]any{"id": id})
	}
	return lead, nil
}

// UpdateStatus moves a lead through its lifecycle. Conversion has its own
// operation and converted leads are final.
func (s *LeadService) UpdateStatus(ctx context.Context, actor *domain.Identity, id string, status domain.LeadStatus) (*domain.Lead, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	if status == domain.LeadStatusConverted {
		return nil, apperrors.NewValidationError("use convert to mark a lead converted", nil)
	}
	lead, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == domain.LeadStatusConverted {
		return nil, apperrors.NewConflict("lead already converted", map[string]any{"id": id})
	}
	if lead.Status == status {
		return lead, nil
	}

	old := lead.Status
	lead.Status = status
	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.events.publish(ctx, events.Event{
		Type:      events.EventLeadStatusChanged,
		SubjectID: lead.ID,
		Actor:     actorOf(actor),
		Payload:   events.LeadStatusChangedPayload{OldStatus: old, NewStatus: status, CreatedBy: lead.CreatedBy},
	})
	return lead, nil
}

// Convert turns a lead into a customer that references it and marks the lead
// converted.
func (s *LeadService) Convert(ctx context.Context, actor *domain.Identity, id string, input ConvertLeadInput) (*domain.Customer, error) {
	if input.SystemSizeKW < 0 {
		return nil, apperrors.NewValidationError("system size must not be negative", nil)
	}
	if input.TechnicianID != nil && (actor == nil || !actor.Role.IsAdmin()) {
		return nil, apperrors.NewForbidden("admin role required to assign technicians")
	}
	lead, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == domain.LeadStatusLost {
		return nil, apperrors.NewConflict("lost leads cannot be converted", map[string]any{"id": id})
	}

	if existing, err := s.customers.GetByLeadID(ctx, lead.ID); err == nil {
		s.repairConvertedStatus(ctx, lead)
		return nil, apperrors.NewConflict("lead already converted", map[string]any{"customer_id": existing.ID})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	leadID := lead.ID
	customer := &domain.Customer{
		LeadID:       &leadID,
		Name:         lead.Name,
		Phone:        lead.Phone,
		Email:        lead.Email,
		Address:      lead.Address,
		SystemSizeKW: input.SystemSizeKW,
		TechnicianID: input.TechnicianID,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}

	lead.Status = domain.LeadStatusConverted
	if err := s.leads.Update(ctx, lead); err != nil {
		s.logger.Error("lead status not updated after conversion",
			zap.String("lead_id", lead.ID),
			zap.String("customer_id", customer.ID),
			zap.Error(err))
		return nil, apperrors.MapError(err)
	}

	s.events.publish(ctx, events.Event{
		Type:      events.EventLeadConverted,
		SubjectID: lead.ID,
		Actor:     actorOf(actor),
		Payload:   events.LeadConvertedPayload{CustomerID: customer.ID, CreatedBy: lead.CreatedBy},
	})
	return customer, nil
}

// repairConvertedStatus marks a lead converted when its customer exists but an
// earlier conversion failed before the lead was updated.
func (s *LeadService) repairConvertedStatus(ctx context.Context, lead *domain.Lead) {
	if lead.Status == domain.LeadStatusConverted {
		return
	}
	repaired := *lead
	repaired.Status = domain.LeadStatusConverted
	if err := s.leads.Update(ctx, &repaired); err != nil {
		s.logger.Warn("lead status repair failed", zap.String("lead_id", lead.ID), zap.Error(err))
		return
	}
	s.logger.Info("lead status repaired", zap.String("lead_id", lead.ID))
}

func (s *LeadService) loadLead(ctx context.Context, id string) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("lead", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return lead, nil
}

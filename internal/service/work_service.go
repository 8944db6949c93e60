package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/repository"
	"github.com/spec-kit/fieldops/internal/scope"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// WorkService exposes the customer side of the pipeline: installed systems,
// technician assignment and per-identity summaries.
type WorkService struct {
	leads      repository.LeadRepository
	customers  repository.CustomerRepository
	identities repository.IdentityRepository
}

// CustomerListFilters define customer listing parameters.
type CustomerListFilters struct {
	TechnicianID *string
	Limit        int
	Offset       int
}

// WorkSummary counts the records visible to an identity.
type WorkSummary struct {
	LeadsByStatus map[domain.LeadStatus]int
	Leads         int
	Customers     int
}

// NewWorkService constructs the service.
func NewWorkService(leads repository.LeadRepository, customers repository.CustomerRepository, identities repository.IdentityRepository) *WorkService {
	return &WorkService{leads: leads, customers: customers, identities: identities}
}

// ListCustomers returns the customers visible to actor. Salesmen and call
// operators only see customers converted from their own leads; their page is
// cut after that filter so it never comes back short.
func (s *WorkService) ListCustomers(ctx context.Context, actor *domain.Identity, filter CustomerListFilters) ([]domain.Customer, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	customerFilter := repository.CustomerFilter{TechnicianID: filter.TechnicianID}
	restricted := scope.Restricted(actor.Role)
	if !restricted {
		customerFilter.Limit, customerFilter.Offset = filter.Limit, filter.Offset
	}
	leads, customers, err := s.fetch(ctx, actor, customerFilter)
	if err != nil {
		return nil, err
	}
	visible := scope.CustomersForIdentity(customers, leads, scope.Viewer(actor))
	if restricted {
		visible = page(visible, filter.Limit, filter.Offset)
	}
	return visible, nil
}

// page applies limit and offset the way the repositories do: a limit of zero
// or less means no limit.
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Summary counts the leads and customers visible to actor.
func (s *WorkService) Summary(ctx context.Context, actor *domain.Identity) (WorkSummary, error) {
	if actor == nil {
		return WorkSummary{}, apperrors.NewUnauthorized("authentication required")
	}
	leads, customers, err := s.fetch(ctx, actor, repository.CustomerFilter{})
	if err != nil {
		return WorkSummary{}, err
	}
	viewer := scope.Viewer(actor)
	visibleLeads := scope.LeadsCreatedBy(leads, viewer)

	summary := WorkSummary{
		LeadsByStatus: make(map[domain.LeadStatus]int),
		Leads:         len(visibleLeads),
		Customers:     len(scope.CustomersForIdentity(customers, leads, viewer)),
	}
	if actor.Role == domain.RoleTechnician {
		summary.Leads = 0
		return summary, nil
	}
	for _, lead := range visibleLeads {
		summary.LeadsByStatus[lead.Status]++
	}
	return summary, nil
}

// AssignTechnician sets or clears the technician of a customer.
func (s *WorkService) AssignTechnician(ctx context.Context, actor *domain.Identity, customerID string, technicianID *string) (*domain.Customer, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if technicianID != nil {
		technician, err := s.identities.GetByID(ctx, *technicianID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("technician", map[string]any{"id": *technicianID})
			}
			return nil, apperrors.MapError(err)
		}
		if technician.Role != domain.RoleTechnician || !technician.IsActive {
			return nil, apperrors.NewValidationError("assignee must be an active technician", map[string]any{"id": *technicianID})
		}
	}

	if err := s.customers.AssignTechnician(ctx, customerID, technicianID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"id": customerID})
		}
		return nil, apperrors.MapError(err)
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// fetch loads leads and customers concurrently. Restricted viewers only load
// their own leads; the customer join is applied by the caller.
func (s *WorkService) fetch(ctx context.Context, actor *domain.Identity, customerFilter repository.CustomerFilter) ([]domain.Lead, []domain.Customer, error) {
	var (
		leads     []domain.Lead
		customers []domain.Customer
	)
	leadFilter := repository.LeadFilter{}
	if scope.Restricted(actor.Role) {
		leadFilter.CreatedBy = &actor.ID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = s.leads.List(gctx, leadFilter)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = s.customers.List(gctx, customerFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return leads, customers, nil
}

package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/fieldops/internal/auth"
	"github.com/spec-kit/fieldops/internal/config"
	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/events"
	"github.com/spec-kit/fieldops/internal/repository"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// IdentityService manages identities from the admin screens.
type IdentityService struct {
	identities repository.IdentityRepository
	bcryptCost int
	events     publisher
}

// IdentityCreateInput describes a new identity.
type IdentityCreateInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     domain.Role
}

// IdentityListFilters define listing parameters.
type IdentityListFilters struct {
	Role   *domain.Role
	Active *bool
	Limit  int
	Offset int
}

// NewIdentityService constructs the service.
func NewIdentityService(cfg config.Config, identities repository.IdentityRepository, dispatcher events.Dispatcher, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		identities: identities,
		bcryptCost: cfg.Auth.BcryptCost,
		events:     publisher{dispatcher: dispatcher, logger: logger},
	}
}

func requireAdmin(actor *domain.Identity) error {
	if actor == nil || !actor.Role.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// List returns identities.
func (s *IdentityService) List(ctx context.Context, actor *domain.Identity, filter IdentityListFilters) ([]domain.Identity, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *filter.Role})
	}
	items, err := s.identities.List(ctx, repository.IdentityFilter{
		Role:   filter.Role,
		Active: filter.Active,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Create adds an identity. Only super admins may create identities.
func (s *IdentityService) Create(ctx context.Context, actor *domain.Identity, input IdentityCreateInput) (*domain.Identity, error) {
	if actor == nil || actor.Role != domain.RoleSuperAdmin {
		return nil, apperrors.NewForbidden("super_admin role required")
	}

	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	details := map[string]any{}
	if name == "" {
		details["name"] = "required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		details["email"] = "invalid"
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		details["password"] = err.Error()
	}
	if !input.Role.Valid() {
		details["role"] = "invalid"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid identity", details)
	}

	if _, err := s.identities.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	identity := &domain.Identity{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Role:         input.Role,
		IsActive:     true,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.events.publish(ctx, events.Event{
		Type:      events.EventIdentityCreated,
		SubjectID: identity.ID,
		Actor:     actorOf(actor),
		Payload:   events.IdentityCreatedPayload{Email: identity.Email, Role: identity.Role},
	})
	return identity, nil
}

// SetActive activates or deactivates an identity. Team leads may only manage
// non-admin identities, and nobody may deactivate themselves.
func (s *IdentityService) SetActive(ctx context.Context, actor *domain.Identity, id string, active bool) (*domain.Identity, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if actor.ID == id && !active {
		return nil, apperrors.NewConflict("cannot deactivate yourself", nil)
	}

	target, err := s.identities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("identity", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if actor.Role != domain.RoleSuperAdmin && target.Role.IsAdmin() {
		return nil, apperrors.NewForbidden("super_admin role required to manage admins")
	}
	if target.IsActive == active {
		return target, nil
	}

	target.IsActive = active
	if err := s.identities.Update(ctx, target); err != nil {
		return nil, apperrors.MapError(err)
	}
	return target, nil
}

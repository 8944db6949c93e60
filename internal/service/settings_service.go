package service

import (
	"context"
	"errors"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/settings"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// SettingsService serves each identity's notification settings.
type SettingsService struct {
	registry *settings.Registry
}

// NewSettingsService constructs the service.
func NewSettingsService(registry *settings.Registry) *SettingsService {
	return &SettingsService{registry: registry}
}

// Get returns the identity's current settings.
func (s *SettingsService) Get(ctx context.Context, identity *domain.Identity) (domain.NotificationSettings, error) {
	if identity == nil {
		return domain.NotificationSettings{}, apperrors.NewUnauthorized("authentication required")
	}
	store, err := s.store(ctx, identity.ID)
	if err != nil {
		return domain.NotificationSettings{}, err
	}
	return store.Snapshot(), nil
}

// Update applies flag changes in order and returns the resulting settings.
func (s *SettingsService) Update(ctx context.Context, identity *domain.Identity, changes map[string]bool) (domain.NotificationSettings, error) {
	if identity == nil {
		return domain.NotificationSettings{}, apperrors.NewUnauthorized("authentication required")
	}
	for flag := range changes {
		if !knownFlag(flag) {
			return domain.NotificationSettings{}, apperrors.NewValidationError("unknown settings flag", map[string]any{"flag": flag})
		}
	}

	store, err := s.store(ctx, identity.ID)
	if err != nil {
		return domain.NotificationSettings{}, err
	}
	for _, flag := range settings.Flags() {
		value, ok := changes[flag]
		if !ok {
			continue
		}
		if err := store.Set(ctx, flag, value); err != nil {
			if errors.Is(err, settings.ErrUnknownFlag) {
				return domain.NotificationSettings{}, apperrors.NewValidationError("unknown settings flag", map[string]any{"flag": flag})
			}
			return domain.NotificationSettings{}, apperrors.NewInternalError(err)
		}
	}
	return store.Snapshot(), nil
}

// store fails the request instead of serving defaults when the stored record
// cannot be read, so a later update never overwrites flags it did not see.
func (s *SettingsService) store(ctx context.Context, owner string) (*settings.Store, error) {
	store, err := s.registry.For(ctx, owner)
	switch {
	case err == nil:
		return store, nil
	case errors.Is(err, settings.ErrClosed):
		return nil, apperrors.NewInternalError(err)
	default:
		return nil, apperrors.NewDependencyUnavailable(map[string]any{"settings": err.Error()})
	}
}

func knownFlag(flag string) bool {
	for _, known := range settings.Flags() {
		if known == flag {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/fieldops/internal/auth"
	"github.com/spec-kit/fieldops/internal/config"
	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/repository"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// AuthService coordinates login, logout and bootstrap flows.
type AuthService struct {
	identities repository.IdentityRepository
	revoked    repository.RevokedTokenRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	IdentityRepo     repository.IdentityRepository
	RevokedTokenRepo repository.RevokedTokenRepository
	Logger           *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		identities: deps.IdentityRepo,
		revoked:    deps.RevokedTokenRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Login authenticates an identity and issues a role-bearing token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Identity, string, *domain.Token, error) {
	identity, err := s.identities.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(identity.PasswordHash, password); err != nil {
		return nil, "", nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !identity.IsActive {
		return nil, "", nil, apperrors.NewUnauthorized("identity inactive")
	}
	s.rehashIfNeeded(ctx, identity, password)

	token, meta, err := s.tokenMgr.GenerateToken(identity)
	if err != nil {
		return nil, "", nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("login", zap.String("identity_id", identity.ID), zap.String("role", string(identity.Role)))
	return identity, token, meta, nil
}

// rehashIfNeeded upgrades a hash made with an outdated bcrypt cost. Failures
// are logged and the login proceeds.
func (s *AuthService) rehashIfNeeded(ctx context.Context, identity *domain.Identity, password string) {
	if !auth.NeedsRehash(identity.PasswordHash, s.bcryptCost) {
		return
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Warn("password rehash failed", zap.String("identity_id", identity.ID), zap.Error(err))
		return
	}
	updated := *identity
	updated.PasswordHash = hash
	if err := s.identities.Update(ctx, &updated); err != nil {
		s.logger.Warn("password rehash not stored", zap.String("identity_id", identity.ID), zap.Error(err))
		return
	}
	identity.PasswordHash = hash
}

// Logout revokes the caller's token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// BootstrapSuperAdmin creates the first super_admin when email is set and unused.
func (s *AuthService) BootstrapSuperAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.identities.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	identity := &domain.Identity{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		return err
	}
	s.logger.Info("bootstrapped super admin", zap.String("identity_id", identity.ID))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

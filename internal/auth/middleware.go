package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/repository"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Identity  *domain.Identity
	TokenID   string
	ExpiresAt time.Time
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	identities repository.IdentityRepository
	revoked    repository.RevokedTokenRepository
}

// NewAuthMiddleware constructs middleware. revoked may be nil when no
// revocation store is configured.
func NewAuthMiddleware(tokens *TokenManager, identities repository.IdentityRepository, revoked repository.RevokedTokenRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, identities: identities, revoked: revoked}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticate(c)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional attaches a principal when the request carries a valid token and
// otherwise lets the request through anonymously.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		return c.Next()
	}
	principal, err := m.authenticate(c)
	if err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && domainErr.HTTPStatus == fiber.StatusUnauthorized {
			return c.Next()
		}
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*Principal, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return nil, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if revoked {
			return nil, apperrors.NewUnauthorized("token revoked")
		}
	}

	identity, err := m.identities.GetByID(c.UserContext(), claims.IdentityID())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("identity not found")
		}
		return nil, apperrors.MapError(err)
	}
	if !identity.IsActive {
		return nil, apperrors.NewUnauthorized("identity inactive")
	}

	principal := &Principal{Identity: identity, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil && principal.Identity != nil
}

// SessionFromContext describes the request as a session. Server-side sessions
// are resolved before handlers run, so they are never loading.
func SessionFromContext(c *fiber.Ctx) domain.Session {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return domain.Session{}
	}
	identity := *principal.Identity
	return domain.Session{Identity: &identity, IsAuthenticated: true}
}

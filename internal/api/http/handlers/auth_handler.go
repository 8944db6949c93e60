package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fieldops/internal/api/dto"
	"github.com/spec-kit/fieldops/internal/auth"
	"github.com/spec-kit/fieldops/internal/navigation"
	"github.com/spec-kit/fieldops/internal/service"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

// AuthHandler exposes login, logout and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	identity, token, meta, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.DataResponse[dto.LoginResponse]{Data: dto.LoginResponse{
		Identity: dto.NewIdentityResponse(identity),
		Auth:     dto.AuthResponse{Token: token, ExpiresAt: meta.ExpiresAt},
	}})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Session handles GET /auth/session. Anonymous callers get an
// unauthenticated session rather than an error.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	session := auth.SessionFromContext(c)
	resp := dto.SessionResponse{
		Authenticated: session.IsAuthenticated,
		Loading:       session.IsLoading,
		LandingRoute:  navigation.LoginRoute,
	}
	if session.Identity != nil {
		identity := dto.NewIdentityResponse(session.Identity)
		resp.Identity = &identity
		resp.LandingRoute = navigation.LandingRoute(session.Identity.Role)
	}
	return c.JSON(dto.DataResponse[dto.SessionResponse]{Data: resp})
}

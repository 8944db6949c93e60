package dto

import (
	"time"

	"github.com/spec-kit/fieldops/internal/domain"
)

// DataResponse wraps every successful payload.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ErrorBody mirrors the error envelope rendered by the error middleware.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error    *ErrorBody      `json:"error,omitempty"`
	Redirect *RedirectTarget `json:"redirect,omitempty"`
}

// RedirectTarget is rendered when a route group guard turns a caller away.
type RedirectTarget struct {
	Action   string `json:"action"`
	Location string `json:"location"`
	Replace  bool   `json:"replace"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResponse pairs the issued token with the identity.
type LoginResponse struct {
	Identity IdentityResponse `json:"identity"`
	Auth     AuthResponse     `json:"auth"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	Loading       bool              `json:"loading"`
	Identity      *IdentityResponse `json:"identity"`
	LandingRoute  string            `json:"landing_route"`
}

// IdentityResponse is the public view of an identity.
type IdentityResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateIdentityRequest payload.
type CreateIdentityRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// SetActiveRequest payload.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// NewIdentityResponse maps a domain identity.
func NewIdentityResponse(identity *domain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:        identity.ID,
		Name:      identity.Name,
		Email:     identity.Email,
		Phone:     identity.Phone,
		Role:      identity.Role,
		IsActive:  identity.IsActive,
		CreatedAt: identity.CreatedAt,
	}
}

// Domain converts the response back into a domain identity.
func (r IdentityResponse) Domain() *domain.Identity {
	return &domain.Identity{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Role:      r.Role,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
}

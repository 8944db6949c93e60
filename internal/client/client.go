// Package client talks to the fieldops API on behalf of the terminal screens.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fieldops/internal/api/dto"
	"github.com/spec-kit/fieldops/internal/domain"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status   int
	Code     string
	Message  string
	Redirect *dto.RedirectTarget
}

func (e *APIError) Error() string {
	if e.Redirect != nil {
		return fmt.Sprintf("api: %d redirect to %s", e.Status, e.Redirect.Location)
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client is a thin JSON client over fiber's HTTP agent.
type Client struct {
	http    *fiber.Client
	baseURL string
	timeout time.Duration
}

// New builds a client for baseURL. Calls are bounded by timeout and by the
// deadline of their context, whichever is sooner.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &fiber.Client{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (string, *domain.Identity, error) {
	var resp dto.DataResponse[dto.LoginResponse]
	if err := c.do(ctx, fiber.MethodPost, "/auth/login", "", dto.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", nil, err
	}
	return resp.Data.Auth.Token, resp.Data.Identity.Domain(), nil
}

// Resolve returns the identity behind token, or nil when the API no longer
// accepts it.
func (c *Client) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	var resp dto.DataResponse[dto.SessionResponse]
	if err := c.do(ctx, fiber.MethodGet, "/auth/session", token, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Data.Authenticated || resp.Data.Identity == nil {
		return nil, nil
	}
	return resp.Data.Identity.Domain(), nil
}

// Logout revokes token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, fiber.MethodPost, "/auth/logout", token, nil, nil)
}

// Leads lists the leads visible to the token's identity.
func (c *Client) Leads(ctx context.Context, token string, statuses ...domain.LeadStatus) ([]domain.Lead, error) {
	path := "/leads"
	if len(statuses) > 0 {
		parts := make([]string, 0, len(statuses))
		for _, status := range statuses {
			parts = append(parts, string(status))
		}
		path += "?status=" + url.QueryEscape(strings.Join(parts, ","))
	}
	var resp dto.DataResponse[[]dto.LeadResponse]
	if err := c.do(ctx, fiber.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	leads := make([]domain.Lead, 0, len(resp.Data))
	for _, item := range resp.Data {
		leads = append(leads, item.Domain())
	}
	return leads, nil
}

// Customers lists the customers the API returns for the token's identity.
func (c *Client) Customers(ctx context.Context, token string) ([]domain.Customer, error) {
	var resp dto.DataResponse[[]dto.CustomerResponse]
	if err := c.do(ctx, fiber.MethodGet, "/customers", token, nil, &resp); err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, 0, len(resp.Data))
	for _, item := range resp.Data {
		customers = append(customers, item.Domain())
	}
	return customers, nil
}

// Identities lists identities for admins.
func (c *Client) Identities(ctx context.Context, token string) ([]domain.Identity, error) {
	var resp dto.DataResponse[[]dto.IdentityResponse]
	if err := c.do(ctx, fiber.MethodGet, "/admin/identities", token, nil, &resp); err != nil {
		return nil, err
	}
	identities := make([]domain.Identity, 0, len(resp.Data))
	for _, item := range resp.Data {
		identities = append(identities, *item.Domain())
	}
	return identities, nil
}

// Summary returns lead and customer counts for the token's identity.
func (c *Client) Summary(ctx context.Context, token string) (dto.SummaryResponse, error) {
	var resp dto.DataResponse[dto.SummaryResponse]
	err := c.do(ctx, fiber.MethodGet, "/summary", token, nil, &resp)
	return resp.Data, err
}

// Settings returns the server-side notification settings.
func (c *Client) Settings(ctx context.Context, token string) (domain.NotificationSettings, error) {
	var resp dto.DataResponse[domain.NotificationSettings]
	err := c.do(ctx, fiber.MethodGet, "/me/settings", token, nil, &resp)
	return resp.Data, err
}

// UpdateSettings changes server-side notification flags.
func (c *Client) UpdateSettings(ctx context.Context, token string, changes map[string]bool) (domain.NotificationSettings, error) {
	var resp dto.DataResponse[domain.NotificationSettings]
	err := c.do(ctx, fiber.MethodPut, "/me/settings", token, dto.UpdateSettingsRequest(changes), &resp)
	return resp.Data, err
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	var agent *fiber.Agent
	target := c.baseURL + path
	switch method {
	case fiber.MethodPost:
		agent = c.http.Post(target)
	case fiber.MethodPut:
		agent = c.http.Put(target)
	default:
		agent = c.http.Get(target)
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	if token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		agent.JSON(body)
	}

	status, raw, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}
	if status >= fiber.StatusBadRequest {
		return decodeError(status, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{Status: status, Code: "HTTP_ERROR", Message: strings.TrimSpace(string(raw))}
	var envelope dto.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return apiErr
	}
	if envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	if envelope.Redirect != nil {
		apiErr.Code = "REDIRECT"
		apiErr.Message = envelope.Redirect.Location
		apiErr.Redirect = envelope.Redirect
	}
	return apiErr
}

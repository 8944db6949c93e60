// Package cli implements the fieldctl screens.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/fieldops/internal/api/dto"
	"github.com/spec-kit/fieldops/internal/client"
	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/navigation"
	"github.com/spec-kit/fieldops/internal/session"
	"github.com/spec-kit/fieldops/internal/settings"
)

// API is the backend surface the screens use.
type API interface {
	session.Backend
	Leads(ctx context.Context, token string, statuses ...domain.LeadStatus) ([]domain.Lead, error)
	Customers(ctx context.Context, token string) ([]domain.Customer, error)
	Identities(ctx context.Context, token string) ([]domain.Identity, error)
	Summary(ctx context.Context, token string) (dto.SummaryResponse, error)
	Settings(ctx context.Context, token string) (domain.NotificationSettings, error)
	UpdateSettings(ctx context.Context, token string, changes map[string]bool) (domain.NotificationSettings, error)
}

// App holds the per-invocation client state: session, local settings and the
// navigation stack.
type App struct {
	api      API
	provider *session.Provider
	settings *settings.Store
	nav      *navigation.StackNavigator
	logger   *zap.Logger
	out      io.Writer

	initOnce sync.Once
}

// NewApp wires an App over storage, the device-local key-value store.
func NewApp(api API, storage settings.Storage, logger *zap.Logger, out io.Writer) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		api:      api,
		provider: session.NewProvider(api, storage, logger.Named("session")),
		settings: settings.NewStore(storage, logger.Named("settings")),
		nav:      navigation.NewStackNavigator("/"),
		logger:   logger,
		out:      out,
	}
}

// Session initializes the provider once and waits until it is ready.
func (a *App) Session(ctx context.Context) (domain.Session, error) {
	a.initOnce.Do(func() { a.provider.Init(ctx) })
	return a.provider.WaitReady(ctx)
}

// Screen pushes route and renders it only when guard allows the session.
// Redirects replace the route and are reported instead of rendering.
func (a *App) Screen(ctx context.Context, route string, guard *navigation.Guard, render func(context.Context, *domain.Identity) error) error {
	current, err := a.Session(ctx)
	if err != nil {
		return err
	}

	a.nav.Push(route)
	var renderErr error
	decision := guard.Enforce(a.nav, current, func() {
		renderErr = render(ctx, current.Identity)
	})

	switch decision.Action {
	case navigation.ActionRedirect:
		a.printRedirect()
		return nil
	case navigation.ActionLoading:
		return errors.New("session is still loading")
	}

	var apiErr *client.APIError
	if errors.As(renderErr, &apiErr) && apiErr.Redirect != nil {
		a.nav.Replace(apiErr.Redirect.Location)
		a.printRedirect()
		return nil
	}
	return renderErr
}

// Route returns the current navigation entry.
func (a *App) Route() string {
	return a.nav.Current()
}

// Close drains pending local settings writes.
func (a *App) Close() {
	a.settings.Close()
}

func (a *App) printRedirect() {
	fmt.Fprintf(a.out, "redirected to %s\n", a.nav.Current())
}

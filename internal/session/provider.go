// Package session holds the authenticated identity for the client screens.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/settings"
)

// TokenKey is the local storage key of the persisted access token.
const TokenKey = "authToken"

// ErrNoIdentity is returned by Login when the backend accepts credentials but
// returns no identity.
var ErrNoIdentity = errors.New("session: backend returned no identity")

// Backend is the authentication flow the provider delegates to.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, *domain.Identity, error)
	Resolve(ctx context.Context, token string) (*domain.Identity, error)
	Logout(ctx context.Context, token string) error
}

// Provider owns the session. Init, Login and Logout are the only writers;
// everyone else reads snapshots.
type Provider struct {
	backend Backend
	storage settings.Storage
	logger  *zap.Logger

	mu       sync.RWMutex
	identity *domain.Identity
	token    string
	ready    bool

	readyCh   chan struct{}
	readyOnce sync.Once
}

// NewProvider builds a provider that is not ready until Init, Login or Logout completes.
func NewProvider(backend Backend, storage settings.Storage, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		backend: backend,
		storage: storage,
		logger:  logger,
		readyCh: make(chan struct{}),
	}
}

// Init restores a persisted token and resolves its identity, then marks the
// provider ready. Failures leave the session unauthenticated.
func (p *Provider) Init(ctx context.Context) {
	defer p.markReady()

	token, found, err := p.storage.Get(ctx, TokenKey)
	if err != nil {
		p.logger.Warn("token restore failed", zap.Error(err))
		return
	}
	if !found || token == "" {
		return
	}

	identity, err := p.backend.Resolve(ctx, token)
	if err != nil {
		p.logger.Warn("session resolve failed", zap.Error(err))
		return
	}
	if identity == nil {
		p.forgetToken(ctx)
		return
	}

	p.mu.Lock()
	p.identity = identity
	p.token = token
	p.mu.Unlock()
}

// Login authenticates and persists the access token.
func (p *Provider) Login(ctx context.Context, email, password string) (domain.Session, error) {
	token, identity, err := p.backend.Login(ctx, email, password)
	if err != nil {
		return p.Snapshot(), err
	}
	if identity == nil {
		return p.Snapshot(), ErrNoIdentity
	}

	p.mu.Lock()
	p.identity = identity
	p.token = token
	p.mu.Unlock()
	p.markReady()

	if err := p.storage.Set(ctx, TokenKey, token); err != nil {
		p.logger.Warn("token persist failed", zap.Error(err))
	}
	return p.Snapshot(), nil
}

// Logout revokes the token remotely and clears the local session. A failed
// remote revocation is logged and does not keep the user signed in.
func (p *Provider) Logout(ctx context.Context) {
	p.mu.Lock()
	token := p.token
	p.identity = nil
	p.token = ""
	p.mu.Unlock()
	p.markReady()

	if token != "" {
		if err := p.backend.Logout(ctx, token); err != nil {
			p.logger.Warn("remote logout failed", zap.Error(err))
		}
	}
	p.forgetToken(ctx)
}

// Snapshot returns an immutable copy of the session.
func (p *Provider) Snapshot() domain.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := domain.Session{IsLoading: !p.ready}
	if p.identity != nil {
		identity := *p.identity
		snapshot.Identity = &identity
		snapshot.IsAuthenticated = true
	}
	return snapshot
}

// Token returns the current access token.
func (p *Provider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Ready is closed once the provider has resolved its initial state.
func (p *Provider) Ready() <-chan struct{} {
	return p.readyCh
}

// WaitReady blocks until the provider is ready and returns the session.
func (p *Provider) WaitReady(ctx context.Context) (domain.Session, error) {
	select {
	case <-p.readyCh:
		return p.Snapshot(), nil
	case <-ctx.Done():
		return p.Snapshot(), ctx.Err()
	}
}

func (p *Provider) markReady() {
	p.readyOnce.Do(func() {
		p.mu.Lock()
		p.ready = true
		p.mu.Unlock()
		close(p.readyCh)
	})
}

func (p *Provider) forgetToken(ctx context.Context) {
	if err := p.storage.Set(ctx, TokenKey, ""); err != nil {
		p.logger.Warn("token clear failed", zap.Error(err))
	}
}

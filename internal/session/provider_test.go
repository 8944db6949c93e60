package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/navigation"
	"github.com/spec-kit/fieldops/internal/settings"
)

type fakeBackend struct {
	identities map[string]*domain.Identity
	resolveErr error
	release    chan struct{}
	loggedOut  []string
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (string, *domain.Identity, error) {
	if password != "secret" {
		return "", nil, errors.New("invalid credentials")
	}
	for token, identity := range f.identities {
		if identity.Email == email {
			return token, identity, nil
		}
	}
	return "", nil, errors.New("invalid credentials")
}

func (f *fakeBackend) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.identities[token], nil
}

func (f *fakeBackend) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func newBackend() *fakeBackend {
	return &fakeBackend{identities: map[string]*domain.Identity{
		"tok-lead": {ID: "u1", Email: "lead@example.com", Role: domain.RoleTeamLead, IsActive: true},
	}}
}

func TestSnapshotIsLoadingUntilInit(t *testing.T) {
	provider := NewProvider(newBackend(), settings.NewMemoryStorage(), nil)

	snapshot := provider.Snapshot()
	assert.True(t, snapshot.IsLoading)
	assert.False(t, snapshot.IsAuthenticated)

	provider.Init(context.Background())

	snapshot = provider.Snapshot()
	assert.False(t, snapshot.IsLoading)
	assert.False(t, snapshot.IsAuthenticated)
}

func TestInitRestoresPersistedToken(t *testing.T) {
	ctx := context.Background()
	storage := settings.NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, TokenKey, "tok-lead"))

	provider := NewProvider(newBackend(), storage, nil)
	provider.Init(ctx)

	snapshot, err := provider.WaitReady(ctx)
	require.NoError(t, err)
	assert.True(t, snapshot.IsAuthenticated)
	assert.Equal(t, domain.RoleTeamLead, snapshot.Role())
	assert.Equal(t, "tok-lead", provider.Token())
}

func TestGuardWaitsForSlowInit(t *testing.T) {
	ctx := context.Background()
	storage := settings.NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, TokenKey, "tok-lead"))
	backend := newBackend()
	backend.release = make(chan struct{})

	provider := NewProvider(backend, storage, nil)
	go provider.Init(ctx)

	guard, _ := navigation.ForGroup(nil, navigation.GroupAdmin)
	nav := navigation.NewStackNavigator(navigation.AdminRoute)
	decision := guard.Enforce(nav, provider.Snapshot(), nil)
	assert.Equal(t, navigation.ActionLoading, decision.Action)
	assert.Equal(t, navigation.AdminRoute, nav.Current())

	close(backend.release)
	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	snapshot, err := provider.WaitReady(waitCtx)
	require.NoError(t, err)

	assert.Equal(t, navigation.ActionRender, guard.Enforce(nav, snapshot, nil).Action)
}

func TestInitWithRejectedTokenIsUnauthenticated(t *testing.T) {
	ctx := context.Background()
	storage := settings.NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, TokenKey, "tok-stale"))

	provider := NewProvider(newBackend(), storage, nil)
	provider.Init(ctx)

	assert.False(t, provider.Snapshot().IsAuthenticated)
	token, _, err := storage.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestInitResolveErrorStillBecomesReady(t *testing.T) {
	ctx := context.Background()
	storage := settings.NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, TokenKey, "tok-lead"))
	backend := newBackend()
	backend.resolveErr = errors.New("backend down")

	provider := NewProvider(backend, storage, nil)
	provider.Init(ctx)

	select {
	case <-provider.Ready():
	default:
		t.Fatal("provider not ready after init")
	}
	assert.False(t, provider.Snapshot().IsAuthenticated)
}

func TestLoginAndLogout(t *testing.T) {
	ctx := context.Background()
	storage := settings.NewMemoryStorage()
	backend := newBackend()
	provider := NewProvider(backend, storage, nil)

	_, err := provider.Login(ctx, "lead@example.com", "wrong")
	assert.Error(t, err)

	snapshot, err := provider.Login(ctx, "lead@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, snapshot.IsAuthenticated)
	assert.False(t, snapshot.IsLoading)

	stored, _, _ := storage.Get(ctx, TokenKey)
	assert.Equal(t, "tok-lead", stored)

	provider.Logout(ctx)
	assert.False(t, provider.Snapshot().IsAuthenticated)
	assert.Equal(t, []string{"tok-lead"}, backend.loggedOut)
	stored, _, _ = storage.Get(ctx, TokenKey)
	assert.Empty(t, stored)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	provider := NewProvider(newBackend(), settings.NewMemoryStorage(), nil)
	_, err := provider.Login(ctx, "lead@example.com", "secret")
	require.NoError(t, err)

	snapshot := provider.Snapshot()
	snapshot.Identity.Role = domain.RoleSuperAdmin

	assert.Equal(t, domain.RoleTeamLead, provider.Snapshot().Role())
}

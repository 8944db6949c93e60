package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/fieldops/internal/domain"
)

func TestRegistryKeepsOneStorePerOwner(t *testing.T) {
	ctx := context.Background()
	backing := map[string]*MemoryStorage{}
	registry := NewRegistry(func(owner string) Storage {
		storage := NewMemoryStorage()
		backing[owner] = storage
		return storage
	}, nil)

	first, err := registry.For(ctx, "tech-1")
	require.NoError(t, err)
	again, err := registry.For(ctx, "tech-1")
	require.NoError(t, err)
	assert.Same(t, first, again)
	other, err := registry.For(ctx, "tech-2")
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	require.NoError(t, first.Set(ctx, domain.FlagEmailAlerts, false))
	registry.Close()

	assert.Equal(t, 1, backing["tech-1"].Writes())
	assert.Equal(t, 0, backing["tech-2"].Writes())
}

func TestRegistryRetriesAfterFailedFirstRead(t *testing.T) {
	ctx := context.Background()
	stored := domain.NotificationSettings{PushNotifications: false, EmailAlerts: false, SMSAlerts: true}
	payload, err := json.Marshal(stored)
	require.NoError(t, err)

	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, StorageKey, string(payload)))
	storage.GetErr = errors.New("redis: i/o timeout")

	registry := NewRegistry(func(string) Storage { return storage }, nil)
	defer registry.Close()

	_, err = registry.For(ctx, "sam")
	require.Error(t, err)

	storage.GetErr = nil
	store, err := registry.For(ctx, "sam")
	require.NoError(t, err)
	assert.Equal(t, stored, store.Snapshot())

	require.NoError(t, store.Set(ctx, domain.FlagEmailAlerts, true))
	require.NoError(t, store.Flush(ctx))

	raw, found, err := storage.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, found)
	var persisted domain.NotificationSettings
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, domain.NotificationSettings{PushNotifications: false, EmailAlerts: true, SMSAlerts: true}, persisted)
}

func TestRegistryRefusesAfterClose(t *testing.T) {
	registry := NewRegistry(func(string) Storage { return NewMemoryStorage() }, nil)
	registry.Close()

	_, err := registry.For(context.Background(), "sam")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegistryConcurrentFirstAccessSharesStore(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(func(string) Storage { return NewMemoryStorage() }, nil)
	defer registry.Close()

	const callers = 8
	stores := make([]*Store, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store, err := registry.For(ctx, "sam")
			assert.NoError(t, err)
			stores[i] = store
		}(i)
	}
	wg.Wait()

	for _, store := range stores[1:] {
		assert.Same(t, stores[0], store)
	}
}

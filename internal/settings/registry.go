package settings

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Registry hands out one Store per owner so each owner has a single writer.
type Registry struct {
	newStorage func(owner string) Storage
	logger     *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store
	closed bool
}

// NewRegistry builds a registry creating storage per owner with newStorage.
func NewRegistry(newStorage func(owner string) Storage, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{newStorage: newStorage, logger: logger, stores: make(map[string]*Store)}
}

// For returns the loaded store of owner, creating and loading it on first use.
// A store whose first read fails is not kept, so the next call reads again
// instead of serving defaults over the stored record. Loading happens outside
// the registry lock.
func (r *Registry) For(ctx context.Context, owner string) (*Store, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if store, ok := r.stores[owner]; ok {
		r.mu.Unlock()
		return store, nil
	}
	r.mu.Unlock()

	store := NewStore(r.newStorage(owner), r.logger.With(zap.String("owner", owner)))
	if _, err := store.Reload(ctx); err != nil {
		store.Close()
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		store.Close()
		return nil, ErrClosed
	}
	if existing, ok := r.stores[owner]; ok {
		store.Close()
		return existing, nil
	}
	r.stores[owner] = store
	return store, nil
}

// Close drains and stops every store. Later calls to For fail with ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	stores := r.stores
	r.stores = make(map[string]*Store)
	r.mu.Unlock()

	for _, store := range stores {
		store.Close()
	}
}

package settings

import (
	"context"
	"sync"
)

// MemoryStorage keeps values in a map. GetErr and SetErr, when set, are
// returned instead of touching the map.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
	writes int

	GetErr error
	SetErr error
}

// NewMemoryStorage returns an empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	val, ok := m.values[key]
	return val, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	m.writes++
	return nil
}

// Writes returns the number of successful Set calls.
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

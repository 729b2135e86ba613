package store

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process backend for development and tests. Records are
// keyed by "tenantID:id" in a single mutex-guarded map.
type Memory[T Item] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewMemory[T Item]() *Memory[T] {
	return &Memory[T]{items: make(map[string]T)}
}

func compositeKey(id, tenantID string) string {
	return tenantID + ":" + id
}

func (m *Memory[T]) Get(_ context.Context, id, tenantID string) (T, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[compositeKey(id, tenantID)]
	return value, ok, nil
}

func (m *Memory[T]) Set(_ context.Context, value T) error {
	if value.ItemTenant() == "" {
		return ErrTenantRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[compositeKey(value.ItemID(), value.ItemTenant())] = value
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, id, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, compositeKey(id, tenantID))
	return nil
}

func (m *Memory[T]) QueryByTenant(_ context.Context, tenantID string) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []T
	prefix := tenantID + ":"
	for key, value := range m.items {
		if strings.HasPrefix(key, prefix) {
			results = append(results, value)
		}
	}
	return results, nil
}

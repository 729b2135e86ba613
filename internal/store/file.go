package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File persists records as flat JSON files, one file per (tenant, id)
// composite key, under baseDir/<container>/.
type File[T Item] struct {
	dir string
}

func NewFile[T Item](baseDir, container string) (*File[T], error) {
	dir := filepath.Join(baseDir, container)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &File[T]{dir: dir}, nil
}

func (f *File[T]) path(id, tenantID string) string {
	return filepath.Join(f.dir, compositeKey(id, tenantID)+".json")
}

func (f *File[T]) Get(_ context.Context, id, tenantID string) (T, bool, error) {
	var value T
	data, err := os.ReadFile(f.path(id, tenantID))
	if errors.Is(err, fs.ErrNotExist) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("decoding %s: %w", f.path(id, tenantID), err)
	}
	return value, true, nil
}

func (f *File[T]) Set(_ context.Context, value T) error {
	if value.ItemTenant() == "" {
		return ErrTenantRequired
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(value.ItemID(), value.ItemTenant()), data, 0o644)
}

func (f *File[T]) Delete(_ context.Context, id, tenantID string) error {
	err := os.Remove(f.path(id, tenantID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (f *File[T]) QueryByTenant(_ context.Context, tenantID string) ([]T, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}

	var results []T
	prefix := tenantID + ":"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.dir, name))
		if err != nil {
			return nil, err
		}
		var value T
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		results = append(results, value)
	}
	return results, nil
}

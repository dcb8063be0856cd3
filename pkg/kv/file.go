package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// File keeps every key in one JSON object on disk. Writes go to a temp
// file that is renamed over the original.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// OpenFile loads path, creating parent directories. A missing file is an
// empty store.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: map[string]json.RawMessage{}}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("kv: read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, fmt.Errorf("kv: parse %s: %w", path, err)
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	metrics.KVOps.WithLabelValues("file", "get").Inc()

	f.mu.Lock()
	raw, ok := f.data[key]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("kv: decode %q: %w", key, err)
	}
	metrics.KVOps.WithLabelValues("file", "hit").Inc()
	return true, nil
}

func (f *File) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	metrics.KVOps.WithLabelValues("file", "set").Inc()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = raw
	return f.flush()
}

func (f *File) Remove(_ context.Context, key string) error {
	metrics.KVOps.WithLabelValues("file", "remove").Inc()

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.flush()
}

func (f *File) Clear(_ context.Context) error {
	metrics.KVOps.WithLabelValues("file", "clear").Inc()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = map[string]json.RawMessage{}
	return f.flush()
}

func (f *File) Close() error { return nil }

// flush must be called with mu held.
func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("kv: encode store: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("kv: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".kv-*")
	if err != nil {
		return fmt.Errorf("kv: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("kv: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kv: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("kv: rename: %w", err)
	}
	return nil
}

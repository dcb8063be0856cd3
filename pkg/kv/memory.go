package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Memory keeps values for the life of the process.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	metrics.KVOps.WithLabelValues("memory", "get").Inc()

	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("kv: decode %q: %w", key, err)
	}
	metrics.KVOps.WithLabelValues("memory", "hit").Inc()
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	metrics.KVOps.WithLabelValues("memory", "set").Inc()

	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	metrics.KVOps.WithLabelValues("memory", "remove").Inc()
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	metrics.KVOps.WithLabelValues("memory", "clear").Inc()
	m.mu.Lock()
	m.data = map[string][]byte{}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

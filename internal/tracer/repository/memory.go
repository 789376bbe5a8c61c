package repository

import (
	"context"
	"sync"
)

// ============================================================
// In-memory Key-Value Store
// ============================================================

// MemoryKV - хранилище в памяти с той же семантикой квоты, что и SQLiteKV.
type MemoryKV struct {
	mu       sync.Mutex
	values   map[string]string
	maxBytes int64
}

func NewMemory(maxBytes int64) *MemoryKV {
	return &MemoryKV{
		values:   make(map[string]string),
		maxBytes: maxBytes,
	}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxBytes > 0 {
		var used int64
		for k, v := range m.values {
			if k != key {
				used += int64(len(v))
			}
		}
		if used+int64(len(value)) > m.maxBytes {
			return ErrQuotaExceeded
		}
	}
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

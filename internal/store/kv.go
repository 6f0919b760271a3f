// Package store persists budget state as string values under string keys.
package store

import (
	"sort"
	"sync"
)

// KV is a flat string key-value store.
type KV interface {
	// Get returns the value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	// Write applies a batch atomically when the backend supports it.
	Write(b Batch) error
	Keys() ([]string, error)
}

// Batch groups writes so one event is persisted together.
type Batch struct {
	Set    map[string]string
	Remove []string
}

// Empty reports whether the batch has nothing to do.
func (b Batch) Empty() bool {
	return len(b.Set) == 0 && len(b.Remove) == 0
}

// Memory is an in-process KV used for tests and dry runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Write(b Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range b.Remove {
		delete(m.data, k)
	}
	for k, v := range b.Set {
		m.data[k] = v
	}
	return nil
}

func (m *Memory) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

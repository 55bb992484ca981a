package state

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemStore is a Store held in memory. Values are JSON-encoded on Put so that
// callers observe the same copy semantics as the file backend.
type MemStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]json.RawMessage)}
}

// Get decodes the value stored under key into v.
func (s *MemStore) Get(key string, v any) error {
	s.mu.Lock()
	raw, ok := s.values[key]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return json.Unmarshal(raw, v)
}

// Put encodes v under key.
func (s *MemStore) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
	return nil
}

// Delete removes key.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *MemStore) Close() error {
	return nil
}

// Package store holds the shared key/value state of one mounted app and
// the rules that write response data into it.
package store

import (
	"sort"
	"sync"
)

// Store is the mutable key/value map shared by every section and action of
// an app. Single-key writes are atomic; concurrent writers to one key race
// and the last write wins.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

// New creates a store seeded with initial values
func New(initial map[string]any) *Store {
	values := make(map[string]any, len(initial))
	for key, value := range initial {
		values[key] = value
	}
	return &Store{values: values}
}

// Get returns the value under key
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// Set writes key
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Delete removes key
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Snapshot returns a shallow copy for template rendering
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}
	return out
}

// Keys returns the sorted key set
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

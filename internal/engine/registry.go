package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/studiowebux/restui/internal/types"
)

// RefreshFunc regenerates one section
type RefreshFunc func(ctx context.Context) error

// RefreshError reports a section refresh that failed with no mock to fall back on
type RefreshError struct {
	Section string
	Err     error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh %s: %v", e.Section, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// Registry maps section ids to their refresh functions. Signals are
// delivered by direct call in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	funcs map[string]RefreshFunc
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]RefreshFunc)}
}

// Register installs the listener for id, replacing any previous one
func (r *Registry) Register(id string, fn RefreshFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[id]; !exists {
		r.order = append(r.order, id)
	}
	r.funcs[id] = fn
}

// Signal refreshes section id
func (r *Registry) Signal(ctx context.Context, id string) error {
	r.mu.RLock()
	fn, ok := r.funcs[id]
	r.mu.RUnlock()
	if !ok {
		return types.Errorf(id, "no such section")
	}
	return fn(ctx)
}

// IDs returns registered ids in registration order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Package binder turns field descriptors into bound inputs and reads
// typed values back out of them.
package binder

import (
	"fmt"
	"sync"

	"github.com/studiowebux/restui/internal/types"
)

// Input is one bound input primitive
type Input struct {
	Key         string
	Type        string
	Label       string
	Placeholder string
	Rows        int
	Value       string
	Options     []types.Option
	OptionsFrom *types.OptionsFrom
	File        *types.FileHandle
}

// IsSelect reports whether the input picks from options
func (in *Input) IsSelect() bool {
	return in.Type == types.FieldSelect
}

// HasOption reports whether value is one of the input's options
func (in *Input) HasOption(value string) bool {
	for _, opt := range in.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// Form is an ordered set of inputs. It is safe for concurrent use.
type Form struct {
	mu     sync.RWMutex
	order  []string
	inputs map[string]*Input
}

// NewForm creates an empty form
func NewForm() *Form {
	return &Form{inputs: make(map[string]*Input)}
}

// Add appends an input, replacing any input with the same key
func (f *Form) Add(in *Input) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.inputs[in.Key]; !exists {
		f.order = append(f.order, in.Key)
	}
	f.inputs[in.Key] = in
}

// Get returns a copy of the input under key
func (f *Form) Get(key string) (Input, bool) {
	if f == nil {
		return Input{}, false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	in, ok := f.inputs[key]
	if !ok {
		return Input{}, false
	}
	return *in, true
}

// Has reports whether key is bound
func (f *Form) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// Set writes the text value of key
func (f *Form) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.inputs[key]
	if !ok {
		return fmt.Errorf("no input %q", key)
	}
	if in.Type == types.FieldFile {
		return fmt.Errorf("input %q is a file input", key)
	}
	in.Value = value
	return nil
}

// SetFile attaches a file to a file input
func (f *Form) SetFile(key string, file types.FileHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.inputs[key]
	if !ok {
		return fmt.Errorf("no input %q", key)
	}
	if in.Type != types.FieldFile {
		return fmt.Errorf("input %q is not a file input", key)
	}
	in.File = &file
	return nil
}

// Keys returns the input keys in declaration order
func (f *Form) Keys() []string {
	if f == nil {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.order...)
}

// Inputs returns copies of every input in declaration order
func (f *Form) Inputs() []Input {
	if f == nil {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Input, 0, len(f.order))
	for _, key := range f.order {
		out = append(out, *f.inputs[key])
	}
	return out
}

// Values returns the text value of every input
func (f *Form) Values() map[string]any {
	out := make(map[string]any)
	if f == nil {
		return out
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for key, in := range f.inputs {
		out[key] = in.Value
	}
	return out
}

// Len returns the number of inputs
func (f *Form) Len() int {
	if f == nil {
		return 0
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order)
}

// update runs fn on the input under key while holding the write lock
func (f *Form) update(key string, fn func(*Input)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in, ok := f.inputs[key]; ok {
		fn(in)
	}
}

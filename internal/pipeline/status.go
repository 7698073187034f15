package pipeline

import (
	"fmt"
	"sync"

	"github.com/studiowebux/restui/internal/types"
)

// Status indicator texts
const (
	ReadyMessage = "Ready."
	FailureHint  = "Check required fields and rules."
)

// Status is the shared message + hint line
type Status struct {
	Message string
	Hint    string
}

// StatusFor derives the indicator line for an envelope
func StatusFor(env *types.Envelope) Status {
	var st Status
	if env.OK {
		st.Message = "ok"
	} else {
		if env.Error != nil {
			st.Message = "error: " + env.Error.Message
		} else {
			st.Message = fmt.Sprintf("error: %d", env.Status)
		}
		st.Hint = FailureHint
	}
	if id := env.Header("x-request-id"); id != "" {
		st.Hint = "request " + id
	}
	return st
}

// Indicator holds the current status line and notifies subscribers
type Indicator struct {
	mu        sync.RWMutex
	current   Status
	listeners []func(Status)
}

// NewIndicator creates an indicator showing "Ready."
func NewIndicator() *Indicator {
	return &Indicator{current: Status{Message: ReadyMessage}}
}

// Set replaces the status line
func (i *Indicator) Set(st Status) {
	i.mu.Lock()
	i.current = st
	listeners := append([]func(Status){}, i.listeners...)
	i.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}

// Report sets the status line for an envelope
func (i *Indicator) Report(env *types.Envelope) {
	i.Set(StatusFor(env))
}

// Fail shows an error message with the generic hint
func (i *Indicator) Fail(message string) {
	i.Set(Status{Message: "error: " + message, Hint: FailureHint})
}

// Current returns the status line
func (i *Indicator) Current() Status {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.current
}

// Subscribe registers fn to run after every change
func (i *Indicator) Subscribe(fn func(Status)) {
	i.mu.Lock()
	i.listeners = append(i.listeners, fn)
	i.mu.Unlock()
}

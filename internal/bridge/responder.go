// Package bridge mediates callback-shaped browser requests (dialogs, file choosers, fullscreen
// media, popups, permissions) into single-owner components that live on the event loop.
package bridge

import "sync"

type resolution int

const (
	unresolved resolution = iota
	resolved
)

// Responder completes one pending browser request exactly once
type Responder[T any] struct {
	mu      sync.Mutex
	state   resolution
	deliver func(T)
}

// NewResponder wraps deliver so that it runs at most once
func NewResponder[T any](deliver func(T)) *Responder[T] {
	return &Responder[T]{deliver: deliver}
}

// Resolve delivers v if the responder is still unresolved and reports whether it did
func (r *Responder[T]) Resolve(v T) bool {
	r.mu.Lock()
	if r.state == resolved {
		r.mu.Unlock()
		return false
	}
	r.state = resolved
	r.mu.Unlock()

	if r.deliver != nil {
		r.deliver(v)
	}
	return true
}

// Resolved reports whether Resolve has already succeeded
func (r *Responder[T]) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == resolved
}

// Package eventloop provides the single logical event queue that every host component runs on.
//
// Components owned by the host are never touched from more than one goroutine: background work
// (status reads, timers, HTTP requests) hands its result back by posting a closure here.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Call once the loop has exited
var ErrStopped = errors.New("event loop stopped")

// Loop runs posted closures one at a time, in posting order
type Loop struct {
	tasks   chan func()
	done    chan struct{}
	logger  *slog.Logger
	started sync.Once
	stopped sync.Once
}

// New creates a loop with room for buffer queued closures
func New(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		tasks:  make(chan func(), buffer),
		done:   make(chan struct{}),
		logger: slog.Default(),
	}
}

// Run processes closures until ctx is cancelled. It must be called at most once.
func (l *Loop) Run(ctx context.Context) {
	ran := false
	l.started.Do(func() { ran = true })
	if !ran {
		l.logger.Error("Event loop started twice")
		return
	}
	defer l.stopped.Do(func() { close(l.done) })

	l.logger.Debug("Event loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Event loop shutting down")
			return
		case fn := <-l.tasks:
			l.invoke(fn)
		}
	}
}

// invoke runs fn, keeping a panicking handler from taking the loop down
func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Event handler panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// Post queues fn for execution on the loop. Closures posted after the loop stopped are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
		l.logger.Debug("Dropping event posted after loop stopped")
	}
}

// Call runs fn on the loop and waits for it to finish
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case l.tasks <- func() {
		defer close(finished)
		fn()
	}:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Run has returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

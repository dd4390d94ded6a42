// pkg/loop/loop.go

// Package loop provides the single-goroutine scheduling the mapper relies on:
// posted tasks and timer callbacks never run concurrently with each other.
package loop

import (
	"context"
	"sync"
	"time"
)

// Timer is a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was stopped before.
	Stop() bool
}

// Scheduler runs callbacks after a delay on the owner's goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Loop is an event loop draining posted tasks on the goroutine calling Run.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// New creates a loop with a task queue of the given capacity.
func New(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run executes tasks until ctx is canceled.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-l.tasks:
			f()
		}
	}
}

// Post queues f. It returns false if the loop has stopped.
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- f:
		return true
	case <-l.done:
		return false
	}
}

// Do runs f on the loop and waits for it to finish. It returns false if
// the loop stopped before f ran.
func (l *Loop) Do(f func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		f()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

type loopTimer struct {
	mu      sync.Mutex
	t       *time.Timer
	stopped bool
	fired   bool
}

func (t *loopTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.t.Stop()
	return true
}

// AfterFunc posts f onto the loop once d elapsed. A timer stopped on the
// loop goroutine never runs, even if its task was already queued.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	lt := &loopTimer{}
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.t = time.AfterFunc(d, func() {
		l.Post(func() {
			lt.mu.Lock()
			if lt.stopped {
				lt.mu.Unlock()
				return
			}
			lt.fired = true
			lt.mu.Unlock()
			f()
		})
	})
	return lt
}

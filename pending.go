package geoapi

import (
	"context"
	"sync"
)

// PendingResult is the asynchronous handle for one dispatched request. It is
// completed exactly once by the dispatcher; callers may block on Await,
// register OnComplete callbacks, or Cancel cooperatively. All three are safe
// for concurrent use.
type PendingResult[T any] struct {
	done   chan struct{}
	once   sync.Once
	cancel context.CancelFunc

	// value and err are written before done is closed and never after.
	value T
	err   error

	mu        sync.Mutex
	completed bool
	callbacks []func(T, error)
}

func newPending[T any](cancel context.CancelFunc) *PendingResult[T] {
	return &PendingResult[T]{done: make(chan struct{}), cancel: cancel}
}

// complete records the terminal state. Only the first call has any effect;
// later calls are silent no-ops so a racing retry can never re-complete.
func (p *PendingResult[T]) complete(value T, err error) {
	p.once.Do(func() {
		p.value = value
		p.err = err
		close(p.done)

		p.mu.Lock()
		p.completed = true
		cbs := p.callbacks
		p.callbacks = nil
		p.mu.Unlock()

		for _, cb := range cbs {
			go cb(value, err)
		}
	})
}

// Await blocks until the request reaches a terminal state, then returns its
// result or classified error. It waits on the completion signal, never
// polling. If ctx ends first the result stays pending and ctx's error is
// returned; the request itself is not cancelled.
func (p *PendingResult[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers fn to run once the request reaches a terminal state.
// If it already has, fn runs immediately on its own goroutine.
func (p *PendingResult[T]) OnComplete(fn func(T, error)) {
	p.mu.Lock()
	if p.completed {
		p.mu.Unlock()
		go fn(p.value, p.err)
		return
	}
	p.callbacks = append(p.callbacks, fn)
	p.mu.Unlock()
}

// Cancel requests cooperative cancellation. A retry boundary or queued
// attempt that observes it completes the result with ErrCancelled; an
// in-flight network call is not aborted, its result is discarded. Cancelling
// an already-terminal result has no effect.
func (p *PendingResult[T]) Cancel() {
	if p.cancel != nil {
		p.cancel()
	}
}

// Done returns a channel closed at the terminal transition, for callers who
// want to select over several pending results.
func (p *PendingResult[T]) Done() <-chan struct{} { return p.done }

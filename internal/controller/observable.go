package controller

import (
	"context"
	"sync"

	"task-manager/internal/pubsub"
)

// Observable holds a value and notifies watchers when it changes
type Observable[T any] struct {
	mu      sync.Mutex
	value   T
	changed chan struct{}
	done    chan struct{}
	closed  bool
}

// NewObservable creates an observable holding initial
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{
		value:   initial,
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Get returns the current value
func (o *Observable[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Update replaces the value with fn(current) and wakes watchers
func (o *Observable[T]) Update(fn func(T) T) T {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.value = fn(o.value)
	if !o.closed {
		close(o.changed)
		o.changed = make(chan struct{})
	}
	return o.value
}

// Watch delivers the current value and then every later one. A slow
// reader only sees the latest value. The channel closes when ctx is done
// or the observable is closed.
func (o *Observable[T]) Watch(ctx context.Context) <-chan T {
	box := pubsub.NewMailbox[T]()

	go func() {
		defer box.Close()
		for {
			o.mu.Lock()
			value, changed := o.value, o.changed
			o.mu.Unlock()

			box.Put(value)

			select {
			case <-changed:
			case <-o.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return box.C()
}

// Close ends every watch
func (o *Observable[T]) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	close(o.done)
}

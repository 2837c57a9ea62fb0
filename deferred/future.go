package deferred

import (
	"context"
	"sync"
)

// Future is the eventual outcome of a computation that can be completed exactly once. Consumers that register
// themselves after the future was completed are called immediately.
type Future[T any] struct {
	// callbacks is a slice of callbacks that will be called when the future is completed.
	callbacks []func(T, error)

	// value is the value that was passed to Complete.
	value T

	// err is the error that was passed to Complete.
	err error

	// done is closed when the future is completed.
	done chan struct{}

	// mutex is used to synchronize access to the callbacks and the outcome.
	mutex sync.RWMutex
}

// NewFuture creates a new uncompleted Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{
		callbacks: make([]func(T, error), 0),
		done:      make(chan struct{}),
	}
}

// Completed creates a Future that is already completed with the given outcome.
func Completed[T any](value T, err error) *Future[T] {
	f := NewFuture[T]()
	f.Complete(value, err)

	return f
}

// Complete completes the future. If the future was already completed, this method does nothing and returns false.
func (f *Future[T]) Complete(value T, err error) (completed bool) {
	for _, callback := range func() (callbacks []func(T, error)) {
		f.mutex.Lock()
		defer f.mutex.Unlock()

		if callbacks = f.callbacks; callbacks != nil {
			f.callbacks = nil
			f.value = value
			f.err = err
			completed = true

			close(f.done)
		}

		return callbacks
	}() {
		callback(value, err)
	}

	return completed
}

// Resolve completes the future with the given value.
func (f *Future[T]) Resolve(value T) bool {
	return f.Complete(value, nil)
}

// Reject completes the future with the given error.
func (f *Future[T]) Reject(err error) bool {
	var zero T

	return f.Complete(zero, err)
}

// OnComplete registers a callback that will be called when the future is completed. If the future was already
// completed, the callback is called immediately.
func (f *Future[T]) OnComplete(callback func(value T, err error)) {
	if !func() (callbackRegistered bool) {
		f.mutex.Lock()
		defer f.mutex.Unlock()

		if f.callbacks == nil {
			return false
		}

		f.callbacks = append(f.callbacks, callback)

		return true
	}() {
		callback(f.Result())
	}
}

// IsComplete returns true if the future was already completed.
func (f *Future[T]) IsComplete() bool {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	return f.callbacks == nil
}

// Result returns the outcome of the future. It returns the zero value and a nil error if the future is not completed
// yet.
func (f *Future[T]) Result() (T, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	return f.value, f.err
}

// Done returns a channel that is closed when the future is completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future is completed or the context is done. A done context only stops the waiting, the
// underlying computation keeps running.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

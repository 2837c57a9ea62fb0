// Package deferred provides a value that is either already known or becomes known later.
//
// Chaining computations over immediate values never leaves the calling goroutine, so callers that only ever see
// synchronous inputs pay nothing for the ability to suspend. As soon as one step is pending, every following step is
// pending as well.
package deferred

import (
	"github.com/iotaledger/hive.go/ierrors"
)

// ErrSuspended is the panic value of ResolveSync when it is called on a pending Value.
var ErrSuspended = ierrors.New("deferred value is pending and can not be resolved synchronously")

// Value is either an immediate outcome (a value or an error) or a pending Future.
type Value[T any] struct {
	value  T
	err    error
	future *Future[T]
}

// Immediate returns a Value that holds the given value.
func Immediate[T any](value T) Value[T] {
	return Value[T]{value: value}
}

// Failed returns a Value that holds the given error.
func Failed[T any](err error) Value[T] {
	return Value[T]{err: err}
}

// Pending returns a Value whose outcome is provided by the given Future.
func Pending[T any](future *Future[T]) Value[T] {
	return Value[T]{future: future}
}

// Of returns an immediate Value for the given result tuple.
func Of[T any](value T, err error) Value[T] {
	if err != nil {
		return Failed[T](err)
	}

	return Immediate(value)
}

// IsPending returns true if the outcome of the Value is not known without waiting.
func (v Value[T]) IsPending() bool {
	return v.future != nil
}

// ResolveSync returns the outcome of an immediate Value. It panics with ErrSuspended if the Value is pending.
func (v Value[T]) ResolveSync() (T, error) {
	if v.future != nil {
		panic(ErrSuspended)
	}

	return v.value, v.err
}

// ResolveAsync returns a Future for the outcome of the Value. Immediate values are wrapped in a completed Future.
func (v Value[T]) ResolveAsync() *Future[T] {
	if v.future != nil {
		return v.future
	}

	return Completed(v.value, v.err)
}

// Bind sequences step after v. The result is immediate if v is immediate and step returns an immediate Value.
// A failed v short-circuits and step is not called.
func Bind[T, R any](v Value[T], step func(T) Value[R]) Value[R] {
	if v.future == nil {
		if v.err != nil {
			return Failed[R](v.err)
		}

		return step(v.value)
	}

	future := NewFuture[R]()
	v.future.OnComplete(func(value T, err error) {
		if err != nil {
			future.Reject(err)

			return
		}

		forward(step(value), future)
	})

	return Pending(future)
}

// Map is like Bind for steps that produce their result without waiting.
func Map[T, R any](v Value[T], fn func(T) (R, error)) Value[R] {
	return Bind(v, func(value T) Value[R] {
		return Of(fn(value))
	})
}

// Catch calls handler with the error of a failed v and returns its result. Successful values pass through unchanged.
func Catch[T any](v Value[T], handler func(error) Value[T]) Value[T] {
	if v.future == nil {
		if v.err == nil {
			return v
		}

		return handler(v.err)
	}

	future := NewFuture[T]()
	v.future.OnComplete(func(value T, err error) {
		if err == nil {
			future.Resolve(value)

			return
		}

		forward(handler(err), future)
	})

	return Pending(future)
}

// forward completes target with the outcome of v.
func forward[T any](v Value[T], target *Future[T]) {
	if v.future == nil {
		target.Complete(v.value, v.err)

		return
	}

	v.future.OnComplete(func(value T, err error) {
		target.Complete(value, err)
	})
}

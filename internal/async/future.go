// Package async provides a small Future abstraction with the combinators the
// launchpad engine builds on: settle-all joins and single-flight sharing.
//
// Tasks are never cancelled. A context passed to Await only bounds how long
// the caller waits; the underlying task keeps running to completion.
package async

import (
	"context"
	"errors"
	"sync"
)

// ErrNilFuture is reported for nil entries passed to combinators.
var ErrNilFuture = errors.New("async: nil future")

// Future is the eventual result of an asynchronous task.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fn in a new goroutine and returns its future.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		v, err := fn()
		f.complete(v, err)
	}()
	return f
}

// Resolved returns an already completed future holding v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.complete(v, nil)
	return f
}

// Rejected returns an already completed future holding err.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait blocks until the future settles.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

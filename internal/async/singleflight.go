package async

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

const singleFlightKey = "single"

// SingleFlight shares one in-flight task between concurrent callers. Calls
// made while a task is pending join it; once it settles the next call starts
// a fresh task. Results are not retained past settlement.
type SingleFlight[T any] struct {
	group   Group[T]
	started atomic.Int64
}

// Do joins the pending task or starts fn.
func (s *SingleFlight[T]) Do(fn func() (T, error)) *Future[T] {
	return s.group.Do(singleFlightKey, func() (T, error) {
		s.started.Add(1)
		return fn()
	})
}

// Started returns how many tasks have been started.
func (s *SingleFlight[T]) Started() int {
	return int(s.started.Load())
}

// Group deduplicates concurrent tasks by key.
type Group[T any] struct {
	group singleflight.Group
}

// Do runs fn once per key among concurrent callers and returns a future for
// the shared result.
func (g *Group[T]) Do(key string, fn func() (T, error)) *Future[T] {
	ch := g.group.DoChan(key, func() (any, error) {
		return fn()
	})
	return Go(func() (T, error) {
		res := <-ch
		var zero T
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("async: unexpected result type %T for key %q", res.Val, key)
		}
		return v, nil
	})
}

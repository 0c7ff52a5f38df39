package async

import (
	"context"
	"fmt"
	"sync"
)

// Result carries either a value or the reason the operation failed.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool { return r.Err == nil }

// Future is a single-assignment container for a Result.
// Only the first resolution is kept; later ones are ignored.
type Future[T any] struct {
	done chan struct{}

	mu        sync.Mutex
	resolved  bool
	res       Result[T]
	callbacks []func(Result[T])
}

// New returns an unresolved future and the function that resolves it.
func New[T any]() (*Future[T], func(Result[T])) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.resolve
}

// Resolved returns a future already completed with res.
func Resolved[T any](res Result[T]) *Future[T] {
	f, resolve := New[T]()
	resolve(res)
	return f
}

// Failed returns a future already completed with err.
func Failed[T any](err error) *Future[T] {
	return Resolved(Result[T]{Err: err})
}

// Go runs fn on its own goroutine and resolves the future with its outcome.
// A panic in fn resolves the future with an error.
func Go[T any](fn func() (T, error)) *Future[T] {
	f, resolve := New[T]()
	go func() {
		v, err := call(fn)
		resolve(Result[T]{Value: v, Err: err})
	}()
	return f
}

func call[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("async: panic: %v", r)
		}
	}()
	return fn()
}

// resolve stores res and runs the pending callbacks. A panicking callback does
// not stop the ones after it; the first panic is raised again once all of
// them have run.
func (f *Future[T]) resolve(res Result[T]) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return
	}
	f.resolved = true
	f.res = res
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	var first any
	for _, cb := range cbs {
		if r := runCallback(cb, res); r != nil && first == nil {
			first = r
		}
	}
	if first != nil {
		panic(first)
	}
}

func runCallback[T any](cb func(Result[T]), res Result[T]) (panicked any) {
	defer func() { panicked = recover() }()
	cb(res)
	return nil
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Peek returns the result without blocking; ok is false while unresolved.
func (f *Future[T]) Peek() (Result[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.res, f.resolved
}

// Await blocks until the future resolves or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		res, _ := f.Peek()
		return res.Value, res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers cb to run exactly once with the result. Callbacks run in
// registration order on the resolving goroutine, or immediately on the
// caller's goroutine when the future is already resolved.
func (f *Future[T]) Then(cb func(Result[T])) {
	if cb == nil {
		return
	}
	f.mu.Lock()
	if !f.resolved {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	res := f.res
	f.mu.Unlock()
	cb(res)
}

// Map derives a future whose value is fn applied to a successful result.
func Map[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out, resolve := New[U]()
	f.Then(func(res Result[T]) {
		if res.Err != nil {
			resolve(Result[U]{Err: res.Err})
			return
		}
		v, err := fn(res.Value)
		resolve(Result[U]{Value: v, Err: err})
	})
	return out
}

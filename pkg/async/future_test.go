package async

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestFutureResolvesOnlyOnce(t *testing.T) {
	f, resolve := New[int]()
	resolve(Result[int]{Value: 1})
	resolve(Result[int]{Value: 2, Err: errors.New("late")})

	got, err := f.Await(context.Background())
	if err != nil || got != 1 {
		t.Fatalf("Await = %d, %v; want 1, nil", got, err)
	}
}

func TestThenRunsExactlyOnce(t *testing.T) {
	f, resolve := New[string]()

	var calls atomic.Int32
	var order []int
	f.Then(func(Result[string]) { calls.Add(1); order = append(order, 1) })
	f.Then(func(Result[string]) { calls.Add(1); order = append(order, 2) })

	resolve(Result[string]{Value: "a"})
	resolve(Result[string]{Value: "b"})

	if calls.Load() != 2 {
		t.Fatalf("expected 2 callback invocations, got %d", calls.Load())
	}
	if order[0] != 1 || order[1] != 2 {
		t.Fatalf("callbacks ran out of order: %v", order)
	}

	var late string
	f.Then(func(r Result[string]) { late = r.Value })
	if late != "a" {
		t.Fatalf("callback registered after resolution saw %q", late)
	}
}

func TestAwaitHonoursContext(t *testing.T) {
	f, _ := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := f.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if _, ok := f.Peek(); ok {
		t.Fatalf("future should still be unresolved")
	}
}

func TestGoRecoversPanics(t *testing.T) {
	f := Go(func() (int, error) { panic("kaboom") })
	_, err := f.Await(context.Background())
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("expected panic error, got %v", err)
	}
}

func TestPanickingCallbackDoesNotStopLaterOnes(t *testing.T) {
	f, resolve := New[int]()
	var second atomic.Int32
	f.Then(func(Result[int]) { panic("first callback") })
	f.Then(func(res Result[int]) { second.Store(int32(res.Value)) })

	func() {
		defer func() {
			if r := recover(); r != "first callback" {
				t.Fatalf("expected callback panic to surface, got %v", r)
			}
		}()
		resolve(Result[int]{Value: 7})
	}()

	if second.Load() != 7 {
		t.Fatalf("second callback did not run")
	}
	if got, _ := f.Peek(); got.Value != 7 {
		t.Fatalf("future lost its value: %+v", got)
	}
}

func TestGoPanicInFnStillRunsCallbacks(t *testing.T) {
	gate := make(chan struct{})
	f := Go(func() (int, error) {
		<-gate
		panic("fn failed")
	})
	got := make(chan error, 1)
	f.Then(func(res Result[int]) { got <- res.Err })
	close(gate)

	select {
	case err := <-got:
		if err == nil || !strings.Contains(err.Error(), "fn failed") {
			t.Fatalf("unexpected error %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("callback never ran")
	}
}

func TestMapPropagatesFailure(t *testing.T) {
	src := Failed[int](errors.New("upstream"))
	called := false
	out := Map(src, func(v int) (string, error) {
		called = true
		return "x", nil
	})
	if _, err := out.Await(context.Background()); err == nil || err.Error() != "upstream" {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if called {
		t.Fatalf("map fn must not run on failure")
	}

	ok := Map(Resolved(Result[int]{Value: 21}), func(v int) (int, error) { return v * 2, nil })
	if v, err := ok.Await(context.Background()); err != nil || v != 42 {
		t.Fatalf("Map = %d, %v", v, err)
	}
}

package async

import (
	"context"
	"fmt"
	"time"
)

// Future is the result of an asynchronous computation.
type Future[T any] struct {
	val  T
	err  error
	done chan struct{}
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// complete must be called exactly once.
func (f *Future[T]) complete(val T, err error) {
	f.val, f.err = val, err
	close(f.done)
}

// Run executes fn in its own goroutine. A context cancelled before fn starts
// completes the future with ctx.Err() without calling fn. A panic in fn is
// recovered and returned as an error.
func Run[P, T any](ctx context.Context, param P, fn func(context.Context, P) (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		var zero T
		if err := ctx.Err(); err != nil {
			f.complete(zero, err)
			return
		}
		f.complete(call(ctx, param, fn))
	}()
	return f
}

// Exec runs fn asynchronously when only its error matters.
func Exec[P any](ctx context.Context, param P, fn func(context.Context, P) error) *Future[struct{}] {
	return Run(ctx, param, func(ctx context.Context, p P) (struct{}, error) {
		return struct{}{}, fn(ctx, p)
	})
}

// Then chains fn onto f. fn runs with f's value once f succeeds; an error
// from f is passed through and fn is not called.
func Then[T, U any](ctx context.Context, f *Future[T], fn func(context.Context, T) (U, error)) *Future[U] {
	next := newFuture[U]()
	go func() {
		var zero U
		val, err := f.Await()
		if err != nil {
			next.complete(zero, err)
			return
		}
		if err := ctx.Err(); err != nil {
			next.complete(zero, err)
			return
		}
		next.complete(call(ctx, val, fn))
	}()
	return next
}

func call[P, T any](ctx context.Context, param P, fn func(context.Context, P) (T, error)) (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("async: panic: %v", r)
		}
	}()
	return fn(ctx, param)
}

// Await blocks until the computation completes.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.val, f.err
}

// AwaitWithTimeout is Await bounded by timeout. ErrTimeout is returned when
// the future is still running; the computation itself is not interrupted.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-f.done:
		return f.val, f.err
	case <-t.C:
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done is closed when the computation completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// OnComplete calls fn with the result in a new goroutine once the future completes.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	go func() {
		fn(f.Await())
	}()
}

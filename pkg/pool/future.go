package pool

import (
	"context"
	"sync"
)

// Future is the one-shot result of a submitted task. It is resolved
// exactly once, with either the task's value or its error, and every
// waiter observes that same outcome.
type Future[T any] struct {
	done chan struct{}
	once sync.Once

	// value and err are written before done is closed and must only be
	// read after it is closed.
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve publishes the result. Later calls are no-ops.
func (f *Future[T]) resolve(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// reject publishes a failure with no value. Later calls are no-ops.
func (f *Future[T]) reject(err error) {
	var zero T
	f.resolve(zero, err)
}

// Wait blocks until the task has finished and returns its result.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

// WaitContext blocks until the task has finished or ctx is done. When
// the context wins, the task keeps running and its eventual result is
// still available through another wait.
func (f *Future[T]) WaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryWait returns the result without blocking. ok is false while the
// task is still pending.
func (f *Future[T]) TryWait() (value T, err error, ok bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Done returns a channel that is closed once the result is available.
// It can be combined with select to wait on several futures at once.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

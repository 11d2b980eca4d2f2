package fetch

import (
	"context"

	"github.com/google/uuid"
)

// Future is a handle to a request issued through a Tracker.
type Future[T any] struct {
	id     uuid.UUID
	method string
	url    string

	done   chan struct{}
	result Result[T]
}

func newFuture[T any](method, url string) *Future[T] {
	return &Future[T]{
		id:     uuid.New(),
		method: method,
		url:    url,
		done:   make(chan struct{}),
	}
}

// ID identifies the request in log entries.
func (f *Future[T]) ID() uuid.UUID {
	return f.id
}

// Done is closed once the request has finished and any success callback has returned.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Active reports whether the request is still in flight.
func (f *Future[T]) Active() bool {
	select {
	case <-f.done:
		return false
	default:
		return true
	}
}

// Result returns the outcome of a finished request. The second value is
// false while the request is still in flight.
func (f *Future[T]) Result() (Result[T], bool) {
	if f.Active() {
		return Result[T]{}, false
	}
	return f.result, true
}

// Wait blocks until the request finishes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (Result[T], error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	}
}

// resolve must be called exactly once.
func (f *Future[T]) resolve(r Result[T]) {
	f.result = r
	close(f.done)
}

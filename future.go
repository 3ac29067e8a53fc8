package clipdex

import "context"

// Future holds the outcome of a call started with Go.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn in its own goroutine and returns immediately.
// The result is delivered exactly once through Await or Done.
//
//	f := clipdex.Go(ctx, func(ctx context.Context) (clipdex.Results, error) {
//	    return client.Query(ctx, clipdex.TextQuery{Query: "dog, car"})
//	})
//	res, err := f.Await(ctx)
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the call finishes or ctx ends. Cancelling ctx stops the
// wait, not the call; cancel the context passed to Go for that.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

package provider

import "context"

// Iterator provides pull-based sequential access to a stream of values.
// The consumer calls Next() to retrieve values one at a time.
// Close must be called when done to release resources.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Item is one value delivered by Channel. Err is set on the last item when
// the iterator failed.
type Item[T any] struct {
	Value T
	Err   error
}

// ForEach calls fn for every value until the iterator is exhausted, fails,
// or fn returns an error. The iterator is closed on return.
func ForEach[T any](ctx context.Context, it Iterator[T], fn func(T) error) error {
	defer func() { _ = it.Close() }()
	for {
		v, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

// Collect drains the iterator into a slice. On failure the values read so
// far are returned with the error.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	var out []T
	err := ForEach(ctx, it, func(v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// Stopper is implemented by iterators that can be closed from another
// goroutine. Done is closed once the iterator has been closed.
type Stopper interface {
	Done() <-chan struct{}
}

// Channel delivers the iterator's values on an unbuffered channel. A
// failure is sent as the last item. The channel is closed, and the
// iterator with it, when the stream ends or ctx is done. If the iterator
// is a Stopper, closing it also ends delivery, so a consumer can stop
// reading without cancelling ctx.
func Channel[T any](ctx context.Context, it Iterator[T]) <-chan Item[T] {
	var stopped <-chan struct{}
	if s, ok := it.(Stopper); ok {
		stopped = s.Done()
	}

	ch := make(chan Item[T])
	go func() {
		defer close(ch)
		defer func() { _ = it.Close() }()
		for {
			v, ok, err := it.Next(ctx)
			if err == nil && !ok {
				return
			}
			select {
			case ch <- Item[T]{Value: v, Err: err}:
			case <-ctx.Done():
				return
			case <-stopped:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

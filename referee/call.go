package referee

import (
	"context"
	"time"
)

type reply[T any] struct {
	value T
	err   error
}

// Call runs f under a timeout. The reply channel is buffered so f never blocks
// once Call has given up; a late reply is dropped.
func Call[T any](ctx context.Context, timeout time.Duration, f func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	replies := make(chan reply[T], 1)
	go func() {
		value, err := f(ctx)
		replies <- reply[T]{value: value, err: err}
	}()

	select {
	case r := <-replies:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func notify(ctx context.Context, timeout time.Duration, f func(context.Context) error) error {
	_, err := Call(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f(ctx)
	})
	return err
}

// Package bridge runs a storage operation to completion on behalf of a
// synchronous caller. Each call gets its own goroutine and derived
// context, torn down when the call returns, and executes under a
// recover boundary: a panic inside the operation becomes ErrInternal
// instead of unwinding into the caller's stack.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ErrInternal marks a fault recovered from inside an operation. The
// process survives; the failed call reports this error.
var ErrInternal = errors.New("bridge: internal fault")

type result[T any] struct {
	val T
	err error
}

// Run executes op on a dedicated goroutine and blocks until it
// completes. The bridge imposes no timeout and never cancels a running
// operation; op receives a per-call context it may pass to backend I/O.
func Run[T any](ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in storage operation",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
				var zero T
				ch <- result[T]{zero, fmt.Errorf("%w: panic: %v", ErrInternal, r)}
			}
		}()
		v, err := op(callCtx)
		ch <- result[T]{v, err}
	}()

	res := <-ch
	return res.val, res.err
}

package worker

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// FetchFunc produces the payload for a fulfill action, or the error for a
// reject action.
type FetchFunc func(ctx context.Context) (any, error)

// PanicError is the reject payload when a FetchFunc panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("fetch panicked: %v", e.Value)
}

// MapToAction runs fn in the background and returns a channel that yields
// the perform action, then the fulfill or reject action, then closes.
// The channel is buffered, so callers may drain it late.
func MapToAction(ctx context.Context, types api.ActionTypes, meta any, fn FetchFunc) <-chan api.Action {
	out := make(chan api.Action, 2)
	out <- types.PerformAction(meta)

	go func() {
		defer close(out)
		out <- settle(ctx, types, meta, fn)
	}()
	return out
}

// Perform dispatches the perform action, waits for fn and dispatches the
// settling action. It returns the error the fetch was rejected with.
func Perform(ctx context.Context, dispatch api.DispatchFunc, types api.ActionTypes, meta any, fn FetchFunc) error {
	dispatch(ctx, types.PerformAction(meta))
	action := settle(ctx, types, meta, fn)
	dispatch(ctx, action)
	return rejection(action)
}

// settle returns the fulfill or reject action for fn.
func settle(ctx context.Context, types api.ActionTypes, meta any, fn FetchFunc) api.Action {
	if err := ctx.Err(); err != nil {
		return types.RejectAction(err, meta)
	}

	payload, err := await(ctx, fn)
	if err != nil {
		return types.RejectAction(err, meta)
	}
	return types.FulfillAction(payload, meta)
}

// await runs fn in its own goroutine and returns its result, or ctx.Err()
// as soon as ctx is done. An abandoned fn is left to observe ctx on its own.
func await(ctx context.Context, fn FetchFunc) (any, error) {
	type result struct {
		payload any
		err     error
	}
	done := make(chan result, 1)
	go func() {
		payload, err := call(ctx, fn)
		done <- result{payload, err}
	}()

	select {
	case r := <-done:
		return r.payload, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func call(ctx context.Context, fn FetchFunc) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload, err = nil, &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(ctx)
}

func rejection(a api.Action) error {
	if !a.Error {
		return nil
	}
	if err, ok := a.Payload.(error); ok {
		return err
	}
	return &api.RejectionError{Reason: a.Payload}
}

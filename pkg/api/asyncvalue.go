package api

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
)

// Reducer folds an action into a state and returns the next state.
// Reducers are pure: they never mutate their input and never fail.
type Reducer[S any] func(state S, action Action) S

// AsyncValue tracks one asynchronous operation: whether it is in flight,
// its last successful payload and its last error.
//
// A nil Payload means no payload has been received (or it was cleared);
// a nil Err means no error. Values returned by reducers must be treated as
// immutable because unchanged fields are shared between states.
type AsyncValue[T any] struct {
	Fetching bool
	Payload  *T
	Err      error
}

// RejectionError wraps a reject payload that is not an error value.
type RejectionError struct {
	Reason any
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("rejected: %v", e.Reason)
}

// InitialAsyncValue returns a value that is neither fetching nor holding a
// payload or error.
func InitialAsyncValue[T any]() *AsyncValue[T] {
	return &AsyncValue[T]{Fetching: false}
}

// NewAsyncValueReducer returns a reducer implementing the perform, fulfill,
// reject and reset transitions over AsyncValue. A nil state is treated as
// InitialAsyncValue. Actions of any other type return state unchanged.
//
// The four type names should be pairwise distinct; see ActionTypes.Validate.
func NewAsyncValueReducer[T any](performType, fulfillType, rejectType, resetType string) Reducer[*AsyncValue[T]] {
	return func(state *AsyncValue[T], action Action) *AsyncValue[T] {
		if state == nil {
			state = InitialAsyncValue[T]()
		}

		switch action.Type {
		case performType:
			return &AsyncValue[T]{
				Fetching: true,
				Payload:  state.Payload,
				Err:      state.Err,
			}
		case fulfillType:
			return &AsyncValue[T]{
				Fetching: false,
				Payload:  payloadOf[T](action.Payload),
			}
		case rejectType:
			return &AsyncValue[T]{
				Fetching: false,
				Payload:  state.Payload,
				Err:      errorOf(action.Payload),
			}
		case resetType:
			return InitialAsyncValue[T]()
		default:
			return state
		}
	}
}

// NewAsyncValueReducerFor is NewAsyncValueReducer taking an ActionTypes.
func NewAsyncValueReducerFor[T any](types ActionTypes) Reducer[*AsyncValue[T]] {
	return NewAsyncValueReducer[T](types.Perform, types.Fulfill, types.Reject, types.Reset)
}

// IsAsyncValueFetching reports whether v is in flight. A nil v is not.
func IsAsyncValueFetching[T any](v *AsyncValue[T]) bool {
	return v != nil && v.Fetching
}

// AsyncValueError returns the last error of v, or nil.
func AsyncValueError[T any](v *AsyncValue[T]) error {
	if v == nil {
		return nil
	}
	return v.Err
}

// AsyncValuePayload returns the last payload of v and whether one is present.
func AsyncValuePayload[T any](v *AsyncValue[T]) (T, bool) {
	var zero T
	if v == nil || v.Payload == nil {
		return zero, false
	}
	return *v.Payload, true
}

// payloadOf extracts a fulfilled payload. Missing or mistyped payloads
// become "no payload".
func payloadOf[T any](p any) *T {
	switch v := p.(type) {
	case nil:
		return nil
	case T:
		return &v
	case *T:
		return v
	default:
		return nil
	}
}

func errorOf(p any) error {
	switch v := p.(type) {
	case nil:
		return nil
	case error:
		return v
	default:
		return &RejectionError{Reason: v}
	}
}

// asyncValueWire is the gob form of AsyncValue. Errors are kept by message
// since most error implementations are not gob-encodable. Gob omits zero
// values, so HasPayload tells a fulfilled 0 or "" apart from no payload.
type asyncValueWire[T any] struct {
	Fetching   bool
	HasPayload bool
	Payload    T
	HasErr     bool
	Err        string
}

// GobEncode implements gob.GobEncoder.
func (v AsyncValue[T]) GobEncode() ([]byte, error) {
	w := asyncValueWire[T]{Fetching: v.Fetching}
	if v.Payload != nil {
		w.HasPayload = true
		w.Payload = *v.Payload
	}
	if v.Err != nil {
		w.HasErr = true
		w.Err = v.Err.Error()
	}
	return gobEncode(&w)
}

// GobDecode implements gob.GobDecoder. A restored error only preserves the
// original message.
func (v *AsyncValue[T]) GobDecode(data []byte) error {
	var w asyncValueWire[T]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	v.Fetching = w.Fetching
	v.Payload = nil
	if w.HasPayload {
		v.Payload = &w.Payload
	}
	v.Err = nil
	if w.HasErr {
		v.Err = errors.New(w.Err)
	}
	return nil
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

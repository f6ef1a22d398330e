package api

import (
	"bytes"
	"encoding/gob"
	"errors"
)

// AsyncRequest tracks a request whose result is not kept, only whether it is
// in flight and how it last failed.
type AsyncRequest struct {
	Fetching bool
	Err      error
}

// InitialAsyncRequest returns {Fetching: false} with no error.
func InitialAsyncRequest() *AsyncRequest {
	return &AsyncRequest{}
}

// NewAsyncRequestReducer mirrors NewAsyncValueReducer without a payload:
// perform keeps the previous error, fulfill clears it, reject replaces it
// and reset returns the initial request.
func NewAsyncRequestReducer(performType, fulfillType, rejectType, resetType string) Reducer[*AsyncRequest] {
	return func(state *AsyncRequest, action Action) *AsyncRequest {
		if state == nil {
			state = InitialAsyncRequest()
		}

		switch action.Type {
		case performType:
			return &AsyncRequest{Fetching: true, Err: state.Err}
		case fulfillType:
			return &AsyncRequest{}
		case rejectType:
			return &AsyncRequest{Err: errorOf(action.Payload)}
		case resetType:
			return InitialAsyncRequest()
		default:
			return state
		}
	}
}

type asyncRequestWire struct {
	Fetching bool
	HasErr   bool
	Err      string
}

// GobEncode implements gob.GobEncoder.
func (r AsyncRequest) GobEncode() ([]byte, error) {
	w := asyncRequestWire{Fetching: r.Fetching}
	if r.Err != nil {
		w.HasErr = true
		w.Err = r.Err.Error()
	}
	return gobEncode(&w)
}

// GobDecode implements gob.GobDecoder.
func (r *AsyncRequest) GobDecode(data []byte) error {
	var w asyncRequestWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	r.Fetching = w.Fetching
	r.Err = nil
	if w.HasErr {
		r.Err = errors.New(w.Err)
	}
	return nil
}

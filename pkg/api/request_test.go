package api

import (
	"errors"
	"testing"
)

func TestAsyncRequestReducer(t *testing.T) {
	reducer := NewAsyncRequestReducer(perform, fulfill, reject, reset)
	failure := errors.New("failed")

	s := reducer(nil, Action{Type: perform})
	if !s.Fetching || s.Err != nil {
		t.Fatalf("unexpected state after perform: %+v", s)
	}

	s = reducer(s, Action{Type: reject, Payload: failure, Error: true})
	if s.Fetching || s.Err != failure {
		t.Fatalf("unexpected state after reject: %+v", s)
	}

	s = reducer(s, Action{Type: perform})
	if !s.Fetching || s.Err != failure {
		t.Fatalf("expected perform to keep the previous error: %+v", s)
	}

	s = reducer(s, Action{Type: fulfill, Payload: "ignored"})
	if s.Fetching || s.Err != nil {
		t.Fatalf("unexpected state after fulfill: %+v", s)
	}

	unchanged := reducer(s, Action{Type: "FOO"})
	if unchanged != s {
		t.Fatalf("expected unknown action to return the same pointer")
	}

	s = reducer(&AsyncRequest{Fetching: true, Err: failure}, Action{Type: reset})
	if s.Fetching || s.Err != nil {
		t.Fatalf("unexpected state after reset: %+v", s)
	}
}

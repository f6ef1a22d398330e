package taskqueue

import (
	"context"
	"errors"
	"time"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// ErrQueueClosed is returned by Enqueue and Dequeue once a queue is closed.
var ErrQueueClosed = errors.New("taskqueue: queue closed")

// Task is one pending fetch. Its lifecycle actions are built from Types and
// carry Meta.
type Task struct {
	ID    string
	Types api.ActionTypes
	Meta  any

	// Fetch produces the fulfill payload or the reject error.
	Fetch func(ctx context.Context) (any, error)

	EnqueuedAt time.Time

	// NotBefore is the earliest time this task should be eligible
	// for processing. Zero value means "immediately".
	NotBefore time.Time
}

// Queue is a simple async task queue interface.
type Queue interface {
	// Enqueue adds a task to the queue. It should respect ctx for cancellation.
	Enqueue(ctx context.Context, t Task) error

	// Dequeue removes and returns the next task, blocking until one is available
	// or the context is cancelled.
	Dequeue(ctx context.Context) (*Task, error)

	// Len returns the approximate number of tasks queued.
	Len() int
}

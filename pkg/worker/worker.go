package worker

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/petrijr/asyncvalue/internal/taskqueue"
	"github.com/petrijr/asyncvalue/pkg/api"
)

// Config holds per-task fetch behavior.
type Config struct {
	// MaxAttempts is how many times a failing fetch runs before the task
	// is rejected. Values below 1 mean a single attempt.
	MaxAttempts int

	// Backoff is the pause between attempts.
	Backoff time.Duration

	// Timeout bounds each attempt. Zero means no limit.
	Timeout time.Duration
}

// Worker pulls tasks from a Queue and dispatches their lifecycle actions.
type Worker struct {
	dispatch api.DispatchFunc
	queue    taskqueue.Queue
	cfg      Config
	nextID   atomic.Uint64
}

// New creates a Worker with a single attempt per task and no timeout.
func New(dispatch api.DispatchFunc, queue taskqueue.Queue) *Worker {
	return NewWithConfig(dispatch, queue, Config{})
}

// NewWithConfig creates a Worker using cfg.
func NewWithConfig(dispatch api.DispatchFunc, queue taskqueue.Queue, cfg Config) *Worker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Worker{
		dispatch: dispatch,
		queue:    queue,
		cfg:      cfg,
	}
}

// Enqueue schedules fn. It does NOT run the fetch itself; that is done by
// ProcessOne.
func (w *Worker) Enqueue(ctx context.Context, types api.ActionTypes, meta any, fn FetchFunc) error {
	return w.EnqueueAt(ctx, types, meta, fn, time.Time{})
}

// EnqueueAt schedules fn to start no earlier than at.
func (w *Worker) EnqueueAt(ctx context.Context, types api.ActionTypes, meta any, fn FetchFunc, at time.Time) error {
	if err := types.Validate(); err != nil {
		return err
	}
	if fn == nil {
		return errors.New("worker: nil fetch func")
	}

	t := taskqueue.Task{
		ID:         "task-" + strconv.FormatUint(w.nextID.Add(1), 10),
		Types:      types,
		Meta:       meta,
		Fetch:      fn,
		EnqueuedAt: time.Now(),
		NotBefore:  at,
	}
	return w.queue.Enqueue(ctx, t)
}

// ProcessOne pulls a single task from the queue and runs it to settlement.
// Returns (processed, error):
//   - processed == false: no task was obtained; err is the dequeue error.
//   - processed == true, err == nil: the task settled, fulfilled or rejected.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	task, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}
	if err := task.Types.Validate(); err != nil {
		return true, err
	}

	// The rejection is already in the store.
	_ = Perform(ctx, w.dispatch, task.Types, task.Meta, w.withRetry(task.Fetch))
	return true, nil
}

// withRetry wraps fn with the configured timeout and retry policy.
func (w *Worker) withRetry(fn FetchFunc) FetchFunc {
	return func(ctx context.Context) (any, error) {
		var lastErr error
		for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
			payload, err := w.attempt(ctx, fn)
			if err == nil {
				return payload, nil
			}
			lastErr = err

			if attempt == w.cfg.MaxAttempts || ctx.Err() != nil {
				break
			}
			if w.cfg.Backoff > 0 {
				timer := time.NewTimer(w.cfg.Backoff)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					return nil, lastErr
				}
			}
		}
		return nil, lastErr
	}
}

func (w *Worker) attempt(ctx context.Context, fn FetchFunc) (any, error) {
	if w.cfg.Timeout <= 0 {
		return call(ctx, fn)
	}
	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()
	return await(ctx, fn)
}

package asyncvalue

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/petrijr/asyncvalue/internal/engine"
	"github.com/petrijr/asyncvalue/internal/taskqueue"
	"github.com/petrijr/asyncvalue/pkg/worker"
)

// LocalRunner bundles an in-memory Store, an in-memory task queue, and a Worker
// to provide a simple "local runner" for development and small services.
//
// Typical usage:
//
//	types := asyncvalue.NewActionTypes("user/fetch")
//	runner := asyncvalue.NewLocalRunner(
//		asyncvalue.NewAsyncValueDictReducerFor[int, User](asyncvalue.MetaKey[int](), types),
//		asyncvalue.Dict[int, User]{},
//	)
//
//	_ = runner.StartWorkers(ctx, 2)
//	_ = runner.FetchAsync(ctx, types, 42, fetchUser(42))
//	...
//	runner.Stop()
type LocalRunner[S any] struct {
	// Store holds the state the workers dispatch into.
	Store Store[S]

	// Queue is the in-memory task queue used by the Worker.
	Queue taskqueue.Queue

	// Worker processes tasks from Queue, dispatching into Store.
	Worker *worker.Worker

	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

type runnerConfig struct {
	logger        *slog.Logger
	queueCapacity int
	worker        worker.Config
	store         []engine.Option
}

// RunnerOption configures a LocalRunner.
type RunnerOption func(*runnerConfig)

// WithLogger sets the logger used for worker loop failures.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(c *runnerConfig) {
		c.logger = logger
	}
}

// WithQueueCapacity sets the in-memory queue capacity (default 1024).
func WithQueueCapacity(capacity int) RunnerOption {
	return func(c *runnerConfig) {
		c.queueCapacity = capacity
	}
}

// WithWorkerConfig sets retry and timeout behavior for every task.
func WithWorkerConfig(cfg worker.Config) RunnerOption {
	return func(c *runnerConfig) {
		c.worker = cfg
	}
}

// WithStoreOptions passes options through to NewStore.
func WithStoreOptions(opts ...StoreOption) RunnerOption {
	return func(c *runnerConfig) {
		c.store = append(c.store, opts...)
	}
}

// NewLocalRunner constructs a LocalRunner whose Store starts at initial.
//
// This is intended for local development, tests, and simple single-process
// deployments.
func NewLocalRunner[S any](reducer Reducer[S], initial S, opts ...RunnerOption) *LocalRunner[S] {
	cfg := runnerConfig{queueCapacity: 1024}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	store := engine.NewStore(reducer, initial, cfg.store...)
	q := taskqueue.NewInMemoryQueue(cfg.queueCapacity)
	w := worker.NewWithConfig(Dispatcher(store), q, cfg.worker)

	return &LocalRunner[S]{
		Store:  store,
		Queue:  q,
		Worker: w,
		logger: cfg.logger,
	}
}

// StartWorkers starts 'concurrency' worker goroutines that continuously call
// Worker.ProcessOne(ctx) until the context is cancelled via Stop.
//
// If StartWorkers is called more than once without Stop, it returns an error.
func (r *LocalRunner[S]) StartWorkers(ctx context.Context, concurrency int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("asyncvalue: LocalRunner already started")
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	r.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(id int) {
			defer r.wg.Done()

			for {
				_, err := r.Worker.ProcessOne(ctx)
				if err == nil {
					continue
				}
				// Cancellation and a closed queue are clean shutdown signals.
				if ctx.Err() != nil || errors.Is(err, taskqueue.ErrQueueClosed) {
					return
				}
				// Keep going so a single bad task doesn't kill the worker loop.
				r.logger.Error("local_runner_worker_error",
					slog.Int("worker", id),
					slog.Any("error", err),
				)
			}
		}(i)
	}

	return nil
}

// Stop cancels all worker goroutines started by StartWorkers and waits
// for them to exit. Tasks still queued stay queued for the next start.
func (r *LocalRunner[S]) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// FetchAsync enqueues fn. A worker dispatches the perform action when it
// picks the task up, then the fulfill or reject action.
func (r *LocalRunner[S]) FetchAsync(ctx context.Context, types ActionTypes, meta any, fn worker.FetchFunc) error {
	return r.Worker.Enqueue(ctx, types, meta, fn)
}

// Fetch runs fn on the calling goroutine and returns the rejection error,
// if any. The store is updated the same way as with FetchAsync.
func (r *LocalRunner[S]) Fetch(ctx context.Context, types ActionTypes, meta any, fn worker.FetchFunc) error {
	return worker.Perform(ctx, Dispatcher(r.Store), types, meta, fn)
}

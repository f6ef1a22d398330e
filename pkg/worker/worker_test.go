package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petrijr/asyncvalue/internal/engine"
	"github.com/petrijr/asyncvalue/internal/taskqueue"
	"github.com/petrijr/asyncvalue/pkg/api"
)

func newUserStore() api.Store[api.Dict[int, string]] {
	reducer := api.NewAsyncValueDictReducerFor[int, string](api.MetaKey[int](), userTypes)
	return engine.NewStore(reducer, api.Dict[int, string]{})
}

func TestWorker_ProcessesTasks(t *testing.T) {
	ctx := context.Background()
	store := newUserStore()
	queue := taskqueue.NewInMemoryQueue(10)
	w := New(api.Dispatcher(store), queue)

	for id, name := range map[int]string{1: "ada", 2: "grace"} {
		if err := w.Enqueue(ctx, userTypes, id, func(ctx context.Context) (any, error) {
			return name, nil
		}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	if err := w.Enqueue(ctx, userTypes, 3, func(ctx context.Context) (any, error) {
		return nil, errors.New("not found")
	}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		processed, err := w.ProcessOne(ctx)
		if !processed || err != nil {
			t.Fatalf("ProcessOne: processed=%v err=%v", processed, err)
		}
	}

	state := store.State()
	if name, _ := api.AsyncValuePayload(state[1]); name != "ada" {
		t.Fatalf("expected ada, got %q", name)
	}
	if name, _ := api.AsyncValuePayload(state[2]); name != "grace" {
		t.Fatalf("expected grace, got %q", name)
	}
	if err := api.AsyncValueError(state[3]); err == nil || err.Error() != "not found" {
		t.Fatalf("expected rejection to be stored, got %v", err)
	}
}

func TestWorker_ProcessOneHonorsCancellation(t *testing.T) {
	w := New(func(context.Context, api.Action) {}, taskqueue.NewInMemoryQueue(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	processed, err := w.ProcessOne(ctx)
	if processed || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected no task and DeadlineExceeded, got processed=%v err=%v", processed, err)
	}
}

func TestWorker_EnqueueValidates(t *testing.T) {
	ctx := context.Background()
	w := New(func(context.Context, api.Action) {}, taskqueue.NewInMemoryQueue(1))

	if err := w.Enqueue(ctx, api.ActionTypes{}, nil, func(ctx context.Context) (any, error) { return nil, nil }); !errors.Is(err, api.ErrEmptyActionType) {
		t.Fatalf("expected ErrEmptyActionType, got %v", err)
	}
	if err := w.Enqueue(ctx, userTypes, nil, nil); err == nil {
		t.Fatalf("expected error for nil fetch")
	}
}

func TestWorker_RetriesBeforeRejecting(t *testing.T) {
	ctx := context.Background()
	store := newUserStore()
	w := NewWithConfig(api.Dispatcher(store), taskqueue.NewInMemoryQueue(1), Config{
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	})

	var attempts atomic.Int32
	_ = w.Enqueue(ctx, userTypes, 1, func(ctx context.Context) (any, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("flaky")
		}
		return "third time", nil
	})

	var dispatched []string
	store.Subscribe(func(_ api.Dict[int, string], a api.Action) {
		dispatched = append(dispatched, a.Type)
	})

	if _, err := w.ProcessOne(ctx); err != nil {
		t.Fatalf("ProcessOne failed: %v", err)
	}

	if attempts.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts.Load())
	}
	if len(dispatched) != 2 || dispatched[0] != userTypes.Perform || dispatched[1] != userTypes.Fulfill {
		t.Fatalf("expected one perform and one fulfill, got %v", dispatched)
	}
}

func TestWorker_TimeoutRejects(t *testing.T) {
	ctx := context.Background()
	store := newUserStore()
	w := NewWithConfig(api.Dispatcher(store), taskqueue.NewInMemoryQueue(1), Config{
		Timeout: 20 * time.Millisecond,
	})

	_ = w.Enqueue(ctx, userTypes, 1, func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	if _, err := w.ProcessOne(ctx); err != nil {
		t.Fatalf("ProcessOne failed: %v", err)
	}
	if err := api.AsyncValueError(store.State()[1]); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded rejection, got %v", err)
	}
}

package taskqueue

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// InMemoryQueue is a Queue kept in process memory. Tasks are delivered in
// NotBefore order, FIFO among equal times, so a delayed task never holds
// back one that is already due. It is safe for concurrent use.
type InMemoryQueue struct {
	capacity int

	mu      sync.Mutex
	tasks   taskHeap
	seq     uint64
	changed chan struct{} // closed and replaced whenever tasks changes

	closeOnce sync.Once
	closed    chan struct{}
}

// NewInMemoryQueue creates a new queue with the given capacity.
// For tests and small deployments, a modest capacity (e.g. 1024) is fine.
func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &InMemoryQueue{
		capacity: capacity,
		changed:  make(chan struct{}),
		closed:   make(chan struct{}),
	}
}

// Ensure InMemoryQueue implements Queue.
var _ Queue = (*InMemoryQueue)(nil)

// Enqueue blocks while the queue is full.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error {
	for {
		q.mu.Lock()
		if q.isClosed() {
			q.mu.Unlock()
			return ErrQueueClosed
		}
		if len(q.tasks) < q.capacity {
			heap.Push(&q.tasks, queuedTask{task: t, seq: q.seq})
			q.seq++
			q.notifyLocked()
			q.mu.Unlock()
			return nil
		}
		changed := q.changed
		q.mu.Unlock()

		select {
		case <-changed:
		case <-q.closed:
			return ErrQueueClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Dequeue returns the earliest task whose NotBefore has passed. A task is
// only removed once it is returned, so cancelling ctx or closing the queue
// while waiting leaves it queued.
func (q *InMemoryQueue) Dequeue(ctx context.Context) (*Task, error) {
	for {
		q.mu.Lock()
		if q.isClosed() {
			q.mu.Unlock()
			return nil, ErrQueueClosed
		}

		var due <-chan time.Time
		var timer *time.Timer
		if len(q.tasks) > 0 {
			wait := time.Until(q.tasks[0].task.NotBefore)
			if wait <= 0 {
				t := heap.Pop(&q.tasks).(queuedTask).task
				q.notifyLocked()
				q.mu.Unlock()
				return &t, nil
			}
			timer = time.NewTimer(wait)
			due = timer.C
		}
		changed := q.changed
		q.mu.Unlock()

		select {
		case <-changed:
		case <-due:
		case <-q.closed:
		case <-ctx.Done():
		}
		if timer != nil {
			timer.Stop()
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (q *InMemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Close wakes every blocked Dequeue and rejects further Enqueues. Queued
// tasks are kept. It is safe to call more than once.
func (q *InMemoryQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.closed)
	})
}

func (q *InMemoryQueue) isClosed() bool {
	select {
	case <-q.closed:
		return true
	default:
		return false
	}
}

func (q *InMemoryQueue) notifyLocked() {
	close(q.changed)
	q.changed = make(chan struct{})
}

type queuedTask struct {
	task Task
	seq  uint64
}

// taskHeap orders tasks by NotBefore, then by enqueue order. A zero
// NotBefore sorts first.
type taskHeap []queuedTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	a, b := h[i].task.NotBefore, h[j].task.NotBefore
	if !a.Equal(b) {
		return a.Before(b)
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(queuedTask)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = queuedTask{}
	*h = old[:n-1]
	return it
}

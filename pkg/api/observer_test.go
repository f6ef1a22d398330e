package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

//
// Helpers
//

// testObserver is a simple Observer implementation used to verify fan-out behavior.
type testObserver struct {
	mu sync.Mutex

	dispatches int
	persists   int
	rehydrates int

	lastDispatch struct {
		Store    string
		Action   Action
		Changed  bool
		Duration time.Duration
	}
	lastPersist struct {
		Key string
		Err error
	}
	lastRehydrate struct {
		Key      string
		Restored bool
		Err      error
	}
}

func (o *testObserver) OnDispatch(ctx context.Context, store string, a Action, changed bool, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatches++
	o.lastDispatch.Store = store
	o.lastDispatch.Action = a
	o.lastDispatch.Changed = changed
	o.lastDispatch.Duration = d
}

func (o *testObserver) OnPersist(ctx context.Context, key string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.persists++
	o.lastPersist.Key = key
	o.lastPersist.Err = err
}

func (o *testObserver) OnRehydrate(ctx context.Context, key string, restored bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rehydrates++
	o.lastRehydrate.Key = key
	o.lastRehydrate.Restored = restored
	o.lastRehydrate.Err = err
}

// recordingHandler is a minimal slog.Handler that just records log records.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Copy to avoid reuse issues.
	cpy := slog.Record{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		cpy.AddAttrs(a)
		return true
	})
	h.records = append(h.records, cpy)
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	return h
}

func attrsToMap(r slog.Record) map[string]any {
	m := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value.Any()
		return true
	})
	return m
}

//
// NoopObserver
//

func TestNoopObserver_DoesNotPanic(t *testing.T) {
	ctx := context.Background()
	var o Observer = NoopObserver{}

	o.OnDispatch(ctx, "store", Action{Type: "x"}, true, time.Millisecond)
	o.OnPersist(ctx, "key", errors.New("boom"))
	o.OnRehydrate(ctx, "key", false, nil)
}

//
// CompositeObserver
//

func TestNewCompositeObserver_EmptyReturnsNoop(t *testing.T) {
	o := NewCompositeObserver()
	if _, ok := o.(NoopObserver); !ok {
		t.Fatalf("expected NewCompositeObserver() to return NoopObserver, got %T", o)
	}
}

func TestNewCompositeObserver_SingleReturnsThatObserver(t *testing.T) {
	single := &testObserver{}
	o := NewCompositeObserver(single, nil) // include a nil to ensure it is filtered

	if got, ok := o.(*testObserver); !ok || got != single {
		t.Fatalf("expected the single non-nil observer to be returned, got %T (%p)", o, o)
	}
}

func TestCompositeObserver_ForwardsAllEvents(t *testing.T) {
	ctx := context.Background()

	o1 := &testObserver{}
	o2 := &testObserver{}
	co, ok := NewCompositeObserver(o1, o2).(*CompositeObserver)
	if !ok {
		t.Fatalf("expected *CompositeObserver")
	}

	err := errors.New("save failed")
	action := Action{Type: "user/fetch/perform"}
	co.OnDispatch(ctx, "users", action, true, 2*time.Millisecond)
	co.OnPersist(ctx, "users", err)
	co.OnRehydrate(ctx, "users", true, nil)

	for i, o := range []*testObserver{o1, o2} {
		if o.dispatches != 1 || o.persists != 1 || o.rehydrates != 1 {
			t.Fatalf("observer %d did not receive all calls: %+v", i+1, o)
		}
		if o.lastDispatch.Store != "users" || o.lastDispatch.Action.Type != action.Type ||
			!o.lastDispatch.Changed || o.lastDispatch.Duration != 2*time.Millisecond {
			t.Fatalf("observer %d dispatch mismatch: %+v", i+1, o.lastDispatch)
		}
		if o.lastPersist.Key != "users" || o.lastPersist.Err != err {
			t.Fatalf("observer %d persist mismatch: %+v", i+1, o.lastPersist)
		}
		if o.lastRehydrate.Key != "users" || !o.lastRehydrate.Restored {
			t.Fatalf("observer %d rehydrate mismatch: %+v", i+1, o.lastRehydrate)
		}
	}
}

//
// LoggingObserver
//

func TestNewLoggingObserver_NilLoggerUsesDefault(t *testing.T) {
	o := NewLoggingObserver(nil)
	lo, ok := o.(*LoggingObserver)
	if !ok {
		t.Fatalf("expected *LoggingObserver, got %T", o)
	}
	if lo.Logger == nil {
		t.Fatalf("expected non-nil Logger when created with nil")
	}
}

func TestLoggingObserver_OnDispatch_EmitsDebugLog(t *testing.T) {
	ctx := context.Background()

	h := &recordingHandler{}
	o := NewLoggingObserver(slog.New(h))

	o.OnDispatch(ctx, "users", Action{Type: "user/fetch/fulfill"}, true, time.Millisecond)

	if len(h.records) != 1 {
		t.Fatalf("expected 1 log record, got %d", len(h.records))
	}

	rec := h.records[0]
	if rec.Level != slog.LevelDebug {
		t.Fatalf("expected LevelDebug, got %v", rec.Level)
	}
	if rec.Message != "action_dispatched" {
		t.Fatalf("expected message action_dispatched, got %q", rec.Message)
	}

	attrs := attrsToMap(rec)
	if attrs["store"] != "users" {
		t.Fatalf("expected store=users, got %v", attrs["store"])
	}
	if attrs["action_type"] != "user/fetch/fulfill" {
		t.Fatalf("expected action_type=user/fetch/fulfill, got %v", attrs["action_type"])
	}
	if attrs["changed"] != true {
		t.Fatalf("expected changed=true, got %v", attrs["changed"])
	}
}

func TestLoggingObserver_OnPersist_LevelDependsOnError(t *testing.T) {
	ctx := context.Background()

	h := &recordingHandler{}
	o := NewLoggingObserver(slog.New(h))

	o.OnPersist(ctx, "users", nil)
	o.OnPersist(ctx, "users", errors.New("boom"))

	if len(h.records) != 2 {
		t.Fatalf("expected 2 log records, got %d", len(h.records))
	}

	okRec := h.records[0]
	failRec := h.records[1]

	if okRec.Level != slog.LevelDebug || okRec.Message != "snapshot_persisted" {
		t.Fatalf("unexpected success record: %v %q", okRec.Level, okRec.Message)
	}
	if failRec.Level != slog.LevelError || failRec.Message != "snapshot_persist_failed" {
		t.Fatalf("unexpected failure record: %v %q", failRec.Level, failRec.Message)
	}
	if attrsToMap(failRec)["error"] == nil {
		t.Fatalf("expected error attribute on failure record, got nil")
	}
}

func TestLoggingObserver_OnRehydrate(t *testing.T) {
	ctx := context.Background()

	h := &recordingHandler{}
	o := NewLoggingObserver(slog.New(h))

	o.OnRehydrate(ctx, "users", false, nil)
	o.OnRehydrate(ctx, "users", false, errors.New("corrupt"))

	if len(h.records) != 2 {
		t.Fatalf("expected 2 log records, got %d", len(h.records))
	}
	if h.records[0].Level != slog.LevelInfo {
		t.Fatalf("expected LevelInfo, got %v", h.records[0].Level)
	}
	if attrsToMap(h.records[0])["restored"] != false {
		t.Fatalf("expected restored=false attribute")
	}
	if h.records[1].Level != slog.LevelError {
		t.Fatalf("expected LevelError, got %v", h.records[1].Level)
	}
}

//
// BasicMetrics
//

func TestBasicMetrics_CountersAndSnapshot(t *testing.T) {
	var m BasicMetrics
	ctx := context.Background()

	m.OnDispatch(ctx, "s", Action{Type: "a"}, true, 1*time.Millisecond)
	m.OnDispatch(ctx, "s", Action{Type: "b"}, false, 3*time.Millisecond)

	m.OnPersist(ctx, "k", nil)
	m.OnPersist(ctx, "k", errors.New("fail"))

	m.OnRehydrate(ctx, "k", true, nil)
	m.OnRehydrate(ctx, "k", false, nil)
	m.OnRehydrate(ctx, "k", false, errors.New("fail"))

	snap := m.Snapshot()

	if snap.Dispatched != 2 {
		t.Fatalf("Dispatched=%d, want 2", snap.Dispatched)
	}
	if snap.Changed != 1 {
		t.Fatalf("Changed=%d, want 1", snap.Changed)
	}
	if snap.AvgDispatchDuration != 2*time.Millisecond {
		t.Fatalf("AvgDispatchDuration=%v, want 2ms", snap.AvgDispatchDuration)
	}
	if snap.Persisted != 1 || snap.PersistFailures != 1 {
		t.Fatalf("Persisted=%d PersistFailures=%d, want 1 and 1", snap.Persisted, snap.PersistFailures)
	}
	if snap.Rehydrated != 1 || snap.RehydrateFailures != 1 {
		t.Fatalf("Rehydrated=%d RehydrateFailures=%d, want 1 and 1", snap.Rehydrated, snap.RehydrateFailures)
	}
}

func TestBasicMetrics_SnapshotZeroDispatchesHasZeroAverage(t *testing.T) {
	var m BasicMetrics
	snap := m.Snapshot()
	if snap.Dispatched != 0 {
		t.Fatalf("Dispatched=%d, want 0", snap.Dispatched)
	}
	if snap.AvgDispatchDuration != 0 {
		t.Fatalf("AvgDispatchDuration=%v, want 0", snap.AvgDispatchDuration)
	}
}

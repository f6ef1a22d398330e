package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from stores and persistors for logging and
// metrics.
//
// Implementations should be fast and non-blocking; dispatch callbacks run
// on the dispatching goroutine.
type Observer interface {
	// OnDispatch is called after the reducer ran. changed reports whether
	// the reducer returned a different state than it was given.
	OnDispatch(ctx context.Context, store string, action Action, changed bool, duration time.Duration)

	// OnPersist is called after a snapshot save attempt.
	OnPersist(ctx context.Context, key string, err error)

	// OnRehydrate is called after a snapshot load attempt. restored is false
	// when no snapshot existed or a transform discarded it.
	OnRehydrate(ctx context.Context, key string, restored bool, err error)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnDispatch(ctx context.Context, store string, a Action, changed bool, d time.Duration) {
}
func (NoopObserver) OnPersist(ctx context.Context, key string, err error) {}
func (NoopObserver) OnRehydrate(ctx context.Context, key string, restored bool, err error) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnDispatch(ctx context.Context, store string, a Action, changed bool, d time.Duration) {
	for _, o := range c.observers {
		o.OnDispatch(ctx, store, a, changed, d)
	}
}

func (c *CompositeObserver) OnPersist(ctx context.Context, key string, err error) {
	for _, o := range c.observers {
		o.OnPersist(ctx, key, err)
	}
}

func (c *CompositeObserver) OnRehydrate(ctx context.Context, key string, restored bool, err error) {
	for _, o := range c.observers {
		o.OnRehydrate(ctx, key, restored, err)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs dispatch and persistence
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnDispatch(ctx context.Context, store string, a Action, changed bool, d time.Duration) {
	o.Logger.DebugContext(ctx, "action_dispatched",
		slog.String("store", store),
		slog.String("action_type", a.Type),
		slog.Bool("changed", changed),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnPersist(ctx context.Context, key string, err error) {
	if err != nil {
		o.Logger.ErrorContext(ctx, "snapshot_persist_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return
	}
	o.Logger.DebugContext(ctx, "snapshot_persisted",
		slog.String("key", key),
	)
}

func (o *LoggingObserver) OnRehydrate(ctx context.Context, key string, restored bool, err error) {
	if err != nil {
		o.Logger.ErrorContext(ctx, "snapshot_rehydrate_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return
	}
	o.Logger.InfoContext(ctx, "snapshot_rehydrated",
		slog.String("key", key),
		slog.Bool("restored", restored),
	)
}

// BasicMetrics collects simple counters and aggregate dispatch durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	dispatched        atomic.Int64
	changed           atomic.Int64
	totalDispatchTime atomic.Int64 // nanoseconds
	persisted         atomic.Int64
	persistFailures   atomic.Int64
	rehydrated        atomic.Int64
	rehydrateFailures atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	Dispatched          int64
	Changed             int64
	AvgDispatchDuration time.Duration

	Persisted       int64
	PersistFailures int64

	Rehydrated        int64
	RehydrateFailures int64
}

func (m *BasicMetrics) OnDispatch(ctx context.Context, store string, a Action, changed bool, d time.Duration) {
	m.dispatched.Add(1)
	m.totalDispatchTime.Add(d.Nanoseconds())
	if changed {
		m.changed.Add(1)
	}
}

func (m *BasicMetrics) OnPersist(ctx context.Context, key string, err error) {
	if err != nil {
		m.persistFailures.Add(1)
		return
	}
	m.persisted.Add(1)
}

// OnRehydrate counts only loads that restored a snapshot or failed.
func (m *BasicMetrics) OnRehydrate(ctx context.Context, key string, restored bool, err error) {
	if err != nil {
		m.rehydrateFailures.Add(1)
		return
	}
	if restored {
		m.rehydrated.Add(1)
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	dispatched := m.dispatched.Load()
	totalNs := m.totalDispatchTime.Load()

	var avg time.Duration
	if dispatched > 0 {
		avg = time.Duration(totalNs / dispatched)
	}

	return BasicMetricsSnapshot{
		Dispatched:          dispatched,
		Changed:             m.changed.Load(),
		AvgDispatchDuration: avg,
		Persisted:           m.persisted.Load(),
		PersistFailures:     m.persistFailures.Load(),
		Rehydrated:          m.rehydrated.Load(),
		RehydrateFailures:   m.rehydrateFailures.Load(),
	}
}

package engine

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// storeImpl is a synchronous, in-process state container driving one reducer.
type storeImpl[S any] struct {
	name     string
	observer api.Observer
	reducer  api.Reducer[S]

	mu    sync.Mutex // guards state; held while the reducer runs
	state S

	lmu       sync.Mutex
	nextID    uint64
	listeners map[uint64]api.Listener[S]
}

// Config describes how to construct a store.
// Only used inside this package; external callers use Options.
type Config struct {
	Name     string
	Observer api.Observer
}

// Option configures a store.
type Option func(*Config)

// WithName sets the store name reported to observers.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithObserver sets the Observer notified after every dispatch.
func WithObserver(obs api.Observer) Option {
	return func(c *Config) {
		c.Observer = obs
	}
}

// NewStore returns a Store starting at initial. External users access this
// via asyncvalue.NewStore.
func NewStore[S any](reducer api.Reducer[S], initial S, opts ...Option) api.Store[S] {
	cfg := Config{Name: "store"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Observer == nil {
		cfg.Observer = api.NoopObserver{}
	}
	if reducer == nil {
		panic("asyncvalue: store reducer must not be nil")
	}

	return &storeImpl[S]{
		name:      cfg.Name,
		observer:  cfg.Observer,
		reducer:   reducer,
		state:     initial,
		listeners: make(map[uint64]api.Listener[S]),
	}
}

func (s *storeImpl[S]) Dispatch(ctx context.Context, action api.Action) S {
	s.mu.Lock()
	start := time.Now()
	prev := s.state
	next := s.reducer(prev, action)
	s.state = next
	elapsed := time.Since(start)
	s.mu.Unlock()

	changed := !SameState(prev, next)
	s.observer.OnDispatch(ctx, s.name, action, changed, elapsed)

	// Listeners run outside the lock so they may dispatch themselves.
	for _, l := range s.snapshotListeners() {
		l(next, action)
	}
	return next
}

func (s *storeImpl[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *storeImpl[S]) Replace(state S) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *storeImpl[S]) Subscribe(l api.Listener[S]) func() {
	if l == nil {
		return func() {}
	}

	s.lmu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = l
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

// snapshotListeners returns listeners in subscription order.
func (s *storeImpl[S]) snapshotListeners() []api.Listener[S] {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	if len(s.listeners) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]api.Listener[S], 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

// SameState reports whether a reducer returned the state it was given.
// It is shared with the persistor, which skips saves for unchanged state.
// Reference kinds compare by identity, comparable values by ==, and
// anything else is reported as changed.
func SameState[S any](a, b S) bool {
	va := reflect.ValueOf(&a).Elem()
	vb := reflect.ValueOf(&b).Elem()

	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}

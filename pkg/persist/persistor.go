package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/petrijr/asyncvalue/internal/engine"
	"github.com/petrijr/asyncvalue/pkg/api"
)

// Persistor saves and restores one state value under Config.Key.
type Persistor[S any] struct {
	cfg   Config
	codec Codec[S]

	mu sync.Mutex // serializes saves
}

// NewPersistor returns a Persistor for cfg. A nil codec uses GobCodec.
func NewPersistor[S any](cfg Config, codec Codec[S]) (*Persistor[S], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Observer == nil {
		cfg.Observer = api.NoopObserver{}
	}
	if cfg.Transform == nil {
		cfg.Transform = ComposeTransforms()
	}
	if codec == nil {
		codec = GobCodec[S]{}
	}
	return &Persistor[S]{cfg: cfg, codec: codec}, nil
}

// Key returns the snapshot key.
func (p *Persistor[S]) Key() string {
	return p.cfg.Key
}

// Persist encodes state and saves it.
func (p *Persistor[S]) Persist(ctx context.Context, state S) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.persistLocked(ctx, state)
}

func (p *Persistor[S]) persistLocked(ctx context.Context, state S) error {
	err := p.save(ctx, state)
	p.cfg.Observer.OnPersist(ctx, p.cfg.Key, err)
	return err
}

func (p *Persistor[S]) save(ctx context.Context, state S) error {
	data, err := p.codec.Encode(state)
	if err != nil {
		return fmt.Errorf("persist %q: encode: %w", p.cfg.Key, err)
	}

	snap, err := p.cfg.Transform.Inbound(api.Snapshot{Key: p.cfg.Key, Data: data})
	if err != nil {
		return fmt.Errorf("persist %q: transform: %w", p.cfg.Key, err)
	}
	snap.Key = p.cfg.Key

	if err := p.cfg.Store.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("persist %q: save: %w", p.cfg.Key, err)
	}
	return nil
}

// Rehydrate loads the saved state. It returns false with a nil error when
// nothing is saved or a Transform discarded the snapshot.
func (p *Persistor[S]) Rehydrate(ctx context.Context) (S, bool, error) {
	state, ok, err := p.load(ctx)
	p.cfg.Observer.OnRehydrate(ctx, p.cfg.Key, ok, err)
	return state, ok, err
}

func (p *Persistor[S]) load(ctx context.Context) (S, bool, error) {
	var zero S

	snap, err := p.cfg.Store.LoadSnapshot(ctx, p.cfg.Key)
	if err != nil {
		if errors.Is(err, api.ErrSnapshotNotFound) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("rehydrate %q: load: %w", p.cfg.Key, err)
	}

	out, keep, err := p.cfg.Transform.Outbound(*snap)
	if err != nil {
		return zero, false, fmt.Errorf("rehydrate %q: transform: %w", p.cfg.Key, err)
	}
	if !keep {
		return zero, false, nil
	}

	state, err := p.codec.Decode(out.Data)
	if err != nil {
		return zero, false, fmt.Errorf("rehydrate %q: decode: %w", p.cfg.Key, err)
	}
	return state, true, nil
}

// Purge deletes the saved snapshot.
func (p *Persistor[S]) Purge(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.Store.DeleteSnapshot(ctx, p.cfg.Key)
}

// Bind persists the store's state after every dispatch that changed it.
// Failures go to the Observer only. Saving stops once ctx is done or the
// returned function is called.
//
// Listeners of concurrent dispatches may run out of order, so each save
// writes the store's current state, not the state the listener was handed.
func (p *Persistor[S]) Bind(ctx context.Context, store api.Store[S]) func() {
	last := store.State()

	return store.Subscribe(func(S, api.Action) {
		if ctx.Err() != nil {
			return
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		state := store.State()
		if engine.SameState(last, state) {
			return
		}
		if err := p.persistLocked(ctx, state); err == nil {
			last = state
		}
	})
}

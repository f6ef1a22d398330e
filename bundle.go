package asyncvalue

import (
	"context"
	"database/sql"

	"github.com/petrijr/asyncvalue/internal/engine"
	"github.com/petrijr/asyncvalue/internal/persistence"
	"github.com/petrijr/asyncvalue/pkg/persist"
)

// BundleConfig describes how a SQLiteBundle persists its state.
type BundleConfig struct {
	// Key names the snapshot row; it is also the store name.
	Key string

	// Transforms run on every save and load, e.g. persist.NewVersionTransform.
	Transforms []persist.Transform

	// Observer receives dispatch, persist and rehydrate events.
	Observer Observer
}

// SQLiteBundle wires together a Store and a Persistor sharing one SQLite
// database. Every dispatch that changes state is written through.
type SQLiteBundle[S any] struct {
	Store     Store[S]
	Persistor *persist.Persistor[S]

	// Restored reports whether the Store started from a saved snapshot.
	Restored bool

	unbind func()
}

// NewSQLiteBundle rehydrates state saved under cfg.Key, falling back to
// initial, and binds the store for write-through.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:state.db?_journal=WAL")
//	bundle, err := asyncvalue.NewSQLiteBundle(ctx, db, reducer, asyncvalue.Dict[int, User]{},
//		asyncvalue.BundleConfig{Key: "users"})
//	defer bundle.Close()
func NewSQLiteBundle[S any](ctx context.Context, db *sql.DB, reducer Reducer[S], initial S, cfg BundleConfig) (*SQLiteBundle[S], error) {
	snapshots, err := persistence.NewSQLiteSnapshotStore(db)
	if err != nil {
		return nil, err
	}

	persistCfg, err := persist.NewConfigBuilder(cfg.Key).
		WithStore(snapshots).
		WithTransforms(cfg.Transforms...).
		WithObserver(cfg.Observer).
		Build()
	if err != nil {
		return nil, err
	}

	p, err := persist.NewPersistor[S](persistCfg, nil)
	if err != nil {
		return nil, err
	}

	state, restored, err := p.Rehydrate(ctx)
	if err != nil {
		return nil, err
	}
	if restored {
		initial = state
	}

	opts := []engine.Option{engine.WithName(cfg.Key)}
	if cfg.Observer != nil {
		opts = append(opts, engine.WithObserver(cfg.Observer))
	}
	store := engine.NewStore(reducer, initial, opts...)

	return &SQLiteBundle[S]{
		Store:     store,
		Persistor: p,
		Restored:  restored,
		unbind:    p.Bind(context.WithoutCancel(ctx), store),
	}, nil
}

// Close stops write-through. The database stays open.
func (b *SQLiteBundle[S]) Close() {
	b.unbind()
}

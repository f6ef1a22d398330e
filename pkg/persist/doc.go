// Package persist saves and restores store state through an
// api.SnapshotStore.
//
// A Persistor encodes state with a Codec, runs it through a chain of
// Transforms and writes the result under a fixed key. Rehydrate reverses
// the chain; any Transform may discard a loaded snapshot, in which case the
// caller keeps its initial state.
//
//	cfg, err := persist.NewConfigBuilder("users").
//		WithStore(store).
//		WithTransforms(
//			persist.NewVersionTransform(2),
//			persist.NewExpireTransform(24*time.Hour, nil),
//		).
//		Build()
//	p, err := persist.NewPersistor[asyncvalue.Dict[int, User]](cfg, nil)
//	if state, ok, err := p.Rehydrate(ctx); err == nil && ok {
//		s.Replace(state)
//	}
//	stop := p.Bind(ctx, s)
//	defer stop()
package persist

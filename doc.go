// Package asyncvalue provides reducers that track the lifecycle of
// asynchronous operations as plain, immutable state.
//
// An AsyncValue records three things about one operation: whether it is
// in flight, the last payload it produced, and the last error it failed
// with. Reducers built by this package move an AsyncValue through that
// lifecycle in response to four actions.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. AsyncValue and Dict
//  2. Reducer factories
//  3. Store
//  4. Worker and LocalRunner
//  5. Persistor
//
// # AsyncValue and Dict
//
// AsyncValue[T] holds {Fetching, Payload, Err}. Dict[K, T] maps keys to
// independent AsyncValues so that many operations of the same kind (for
// example one fetch per user id) can be tracked side by side.
//
// # Reducer factories
//
// NewAsyncValueReducer takes four action type names and returns a pure
// reducer:
//
//   - perform: Fetching becomes true; payload and error are kept
//   - fulfill: the action payload becomes the payload; the error is cleared
//   - reject:  the action payload becomes the error; the payload is kept
//   - reset:   back to the initial value
//
// Any other action returns the input state unchanged, pointer-identical.
// NewAsyncValueDictReducer applies the same table to the single entry
// selected by a KeyFunc and copies the map, sharing untouched entries.
//
// ActionTypes bundles the four names; NewActionTypes("user/fetch") derives
// "user/fetch/perform", "user/fetch/fulfill" and so on.
//
// # Store
//
// NewStore drives a reducer in process: Dispatch applies one action at a
// time, Subscribe registers listeners that run after each dispatch, and
// Replace swaps in restored state. Stores report activity to an Observer.
//
// # Worker and LocalRunner
//
// Package worker adapts a fetch function into the perform, fulfill and
// reject actions and dispatches them into a store. LocalRunner bundles a
// store, an in-memory queue and a pool of workers:
//
//	types := asyncvalue.NewActionTypes("user/fetch")
//	runner := asyncvalue.NewLocalRunner(
//		asyncvalue.NewAsyncValueDictReducerFor[int, User](asyncvalue.MetaKey[int](), types),
//		asyncvalue.Dict[int, User]{},
//	)
//	_ = runner.StartWorkers(ctx, 2)
//	defer runner.Stop()
//	_ = runner.FetchAsync(ctx, types, 42, func(ctx context.Context) (any, error) {
//		return users.Get(ctx, 42)
//	})
//
// # Persistor
//
// Package persist saves store state through a SnapshotStore and restores it
// on startup. Snapshot stores exist for memory, SQLite, PostgreSQL, Redis,
// MongoDB and S3. SQLiteBundle wires a store and a persistor over one
// SQLite database.
//
// # Observability
//
// Observer receives dispatch, persist and rehydrate events. LoggingObserver
// writes them to log/slog, BasicMetrics keeps counters, and package metrics
// exports them to Prometheus and OpenTelemetry.
package asyncvalue

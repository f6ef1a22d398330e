// Package api contains the core building blocks of asyncvalue: the
// AsyncValue model, the reducer factories that fold lifecycle actions into
// it, and the interfaces implemented by stores, snapshot backends and
// observers.
//
// Most users interact with the higher-level asyncvalue package, which
// re-exports selected types and helpers from this package.
//
// # Async values
//
// An AsyncValue records whether an operation is in flight, its last payload
// and its last error. Four actions drive it:
//
//   - perform: Fetching becomes true; payload and error are kept
//   - fulfill: Fetching becomes false; the payload is replaced, the error cleared
//   - reject:  Fetching becomes false; the error is replaced, the payload kept
//   - reset:   everything is cleared
//
// The action type names are chosen by the caller, usually through
// NewActionTypes. Any other action returns the state unchanged.
//
// # Dicts
//
// A Dict keeps one AsyncValue per key, for example one per entity id. The
// dict reducer resolves the key from each action with a KeyFunc and updates
// only that entry, copying the map and sharing every other entry.
//
// # Reducers are pure
//
// Reducers never mutate their input, never fail and perform no I/O.
// Dispatch, persistence and async adapters live in other packages and only
// call reducers.
//
// # Observability
//
// The Observer interface is implemented by LoggingObserver (log/slog),
// BasicMetrics and the Prometheus and OpenTelemetry observers in
// pkg/metrics; NewCompositeObserver fans out to several of them.
package api

package api

import "context"

// Listener is notified after every dispatch with the resulting state and
// the action that produced it.
type Listener[S any] func(state S, action Action)

// DispatchFunc delivers an action to a store. Workers and adapters depend on
// this instead of a concrete Store so they stay independent of the state type.
type DispatchFunc func(ctx context.Context, action Action)

// Store is a state container driving a single reducer.
type Store[S any] interface {
	// Dispatch folds action into the current state and returns the new state.
	// Dispatches are applied one at a time in the order they acquire the
	// store; listeners run after the state has been updated.
	Dispatch(ctx context.Context, action Action) S

	// State returns the current state.
	State() S

	// Subscribe registers l and returns a function that removes it.
	Subscribe(l Listener[S]) (unsubscribe func())

	// Replace swaps the current state without running the reducer, e.g.
	// after rehydrating from a snapshot. Listeners are not notified.
	Replace(state S)
}

// Dispatcher adapts a Store to a DispatchFunc.
func Dispatcher[S any](s Store[S]) DispatchFunc {
	return func(ctx context.Context, action Action) {
		s.Dispatch(ctx, action)
	}
}

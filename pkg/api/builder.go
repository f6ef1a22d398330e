package api

import "fmt"

// ReducerBuilder assembles a reducer from per-type handlers:
//
//	reducer := api.NewReducerBuilder[State]().
//	    Handle("user/fetch/fulfill", onUser).
//	    Handle("session/reset", onReset).
//	    Build()
//
// Actions without a handler return the state unchanged.
type ReducerBuilder[S any] struct {
	handlers map[string]Reducer[S]
}

// NewReducerBuilder returns an empty builder.
func NewReducerBuilder[S any]() *ReducerBuilder[S] {
	return &ReducerBuilder[S]{handlers: make(map[string]Reducer[S])}
}

// Handle registers h for actionType. It panics on an empty type, a nil
// handler, or a type that already has a handler.
func (b *ReducerBuilder[S]) Handle(actionType string, h Reducer[S]) *ReducerBuilder[S] {
	if actionType == "" {
		panic("asyncvalue: action type must not be empty")
	}
	if h == nil {
		panic(fmt.Sprintf("asyncvalue: action type %q has nil handler", actionType))
	}
	if _, dup := b.handlers[actionType]; dup {
		panic(fmt.Sprintf("asyncvalue: action type %q already handled", actionType))
	}
	b.handlers[actionType] = h
	return b
}

// HandleTypes registers h for every one of the four lifecycle types, which
// is the usual way to embed an async value reducer in a larger state.
func (b *ReducerBuilder[S]) HandleTypes(types ActionTypes, h Reducer[S]) *ReducerBuilder[S] {
	return b.
		Handle(types.Perform, h).
		Handle(types.Fulfill, h).
		Handle(types.Reject, h).
		Handle(types.Reset, h)
}

// Build returns the reducer. Later calls to Handle do not affect it.
func (b *ReducerBuilder[S]) Build() Reducer[S] {
	handlers := make(map[string]Reducer[S], len(b.handlers))
	for t, h := range b.handlers {
		handlers[t] = h
	}

	return func(state S, action Action) S {
		h, ok := handlers[action.Type]
		if !ok {
			return state
		}
		return h(state, action)
	}
}

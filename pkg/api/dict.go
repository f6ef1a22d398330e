package api

// Dict keeps an independent AsyncValue per key. Entries appear on the first
// action that references their key and are never removed by the reducer.
type Dict[K comparable, T any] map[K]*AsyncValue[T]

// KeyFunc resolves the dict key an action applies to.
type KeyFunc[K comparable] func(action Action) K

// NewAsyncValueDictReducer returns a reducer that routes each recognized
// action to the entry at keyOf(action), using the transitions of
// NewAsyncValueReducer.
//
// Actions of any other type return state itself. For recognized actions a
// new Dict is returned in which only the addressed entry differs; all other
// entries keep their pointers so identity-based memoization still works.
// A nil state is treated as an empty Dict.
func NewAsyncValueDictReducer[K comparable, T any](
	keyOf KeyFunc[K],
	performType, fulfillType, rejectType, resetType string,
) Reducer[Dict[K, T]] {
	types := ActionTypes{
		Perform: performType,
		Fulfill: fulfillType,
		Reject:  rejectType,
		Reset:   resetType,
	}
	value := NewAsyncValueReducer[T](performType, fulfillType, rejectType, resetType)

	return func(state Dict[K, T], action Action) Dict[K, T] {
		if state == nil {
			state = Dict[K, T]{}
		}
		if !types.Recognizes(action.Type) {
			return state
		}

		key := keyOf(action)
		next := make(Dict[K, T], len(state)+1)
		for k, v := range state {
			next[k] = v
		}
		next[key] = value(state[key], action)
		return next
	}
}

// NewAsyncValueDictReducerFor is NewAsyncValueDictReducer taking an ActionTypes.
func NewAsyncValueDictReducerFor[K comparable, T any](keyOf KeyFunc[K], types ActionTypes) Reducer[Dict[K, T]] {
	return NewAsyncValueDictReducer[K, T](keyOf, types.Perform, types.Fulfill, types.Reject, types.Reset)
}

// MetaKey uses the action's Meta as the key. Actions whose Meta is not a K
// resolve to the zero key.
func MetaKey[K comparable]() KeyFunc[K] {
	return func(action Action) K {
		k, _ := action.Meta.(K)
		return k
	}
}

// MetaFieldKey reads the key from a map[string]any Meta, e.g. {"id": 1}.
func MetaFieldKey[K comparable](field string) KeyFunc[K] {
	return func(action Action) K {
		var zero K
		m, ok := action.Meta.(map[string]any)
		if !ok {
			return zero
		}
		k, ok := m[field].(K)
		if !ok {
			return zero
		}
		return k
	}
}

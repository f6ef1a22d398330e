package api

import "errors"

var (
	// ErrEmptyActionType is returned by ActionTypes.Validate when one of the
	// four type names is empty.
	ErrEmptyActionType = errors.New("action type must not be empty")

	// ErrDuplicateActionType is returned by ActionTypes.Validate when two of
	// the four type names are equal.
	ErrDuplicateActionType = errors.New("action types must be pairwise distinct")
)

// Action is a dispatched event. Type selects the transition; Payload carries
// the fulfilled value or the rejection error; Meta carries caller data such
// as the id used by dict reducers.
type Action struct {
	Type    string
	Payload any
	Meta    any
	Error   bool
}

// ActionTypes names the four lifecycle events of one async operation.
type ActionTypes struct {
	Perform string
	Fulfill string
	Reject  string
	Reset   string
}

// NewActionTypes derives the four type names from a common base, e.g.
// "user/fetch" yields "user/fetch/perform", "user/fetch/fulfill", ...
func NewActionTypes(base string) ActionTypes {
	return ActionTypes{
		Perform: base + "/perform",
		Fulfill: base + "/fulfill",
		Reject:  base + "/reject",
		Reset:   base + "/reset",
	}
}

// Validate reports whether the type names can drive a reducer unambiguously.
func (t ActionTypes) Validate() error {
	names := [...]string{t.Perform, t.Fulfill, t.Reject, t.Reset}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return ErrEmptyActionType
		}
		if _, dup := seen[n]; dup {
			return ErrDuplicateActionType
		}
		seen[n] = struct{}{}
	}
	return nil
}

// Recognizes reports whether actionType is one of the four names.
func (t ActionTypes) Recognizes(actionType string) bool {
	switch actionType {
	case t.Perform, t.Fulfill, t.Reject, t.Reset:
		return true
	}
	return false
}

// PerformAction returns a perform action for these types.
func (t ActionTypes) PerformAction(meta any) Action {
	return NewPerformAction(t.Perform, meta)
}

// FulfillAction returns a fulfill action carrying payload.
func (t ActionTypes) FulfillAction(payload any, meta any) Action {
	return NewFulfillAction(t.Fulfill, payload, meta)
}

// RejectAction returns a reject action carrying err.
func (t ActionTypes) RejectAction(err error, meta any) Action {
	return NewRejectAction(t.Reject, err, meta)
}

// ResetAction returns a reset action for these types.
func (t ActionTypes) ResetAction(meta any) Action {
	return NewResetAction(t.Reset, meta)
}

// NewPerformAction creates an action that marks an operation as in flight.
func NewPerformAction(actionType string, meta any) Action {
	return Action{Type: actionType, Meta: meta}
}

// NewFulfillAction creates an action carrying a successful result.
func NewFulfillAction(actionType string, payload any, meta any) Action {
	return Action{Type: actionType, Payload: payload, Meta: meta}
}

// NewRejectAction creates an action carrying a failure. Error is always set.
func NewRejectAction(actionType string, err error, meta any) Action {
	return Action{Type: actionType, Payload: err, Meta: meta, Error: true}
}

// NewResetAction creates an action that clears an async value.
func NewResetAction(actionType string, meta any) Action {
	return Action{Type: actionType, Meta: meta}
}

// IsPerformAction reports whether a has type actionType.
func IsPerformAction(a Action, actionType string) bool {
	return a.Type == actionType
}

// IsFulfillAction reports whether a has type actionType.
func IsFulfillAction(a Action, actionType string) bool {
	return a.Type == actionType
}

// IsRejectAction reports whether a has type actionType and the Error flag,
// which NewRejectAction sets.
func IsRejectAction(a Action, actionType string) bool {
	return a.Type == actionType && a.Error
}

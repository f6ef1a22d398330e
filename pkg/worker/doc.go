// Package worker turns asynchronous fetches into async-value lifecycle
// actions.
//
// MapToAction and Perform are the building blocks: both announce a fetch
// with the perform action and settle it with exactly one fulfill or reject
// action carrying the same meta. A panic inside the fetch settles as a
// reject with *PanicError, and a cancelled context settles as a reject with
// ctx.Err().
//
// Worker runs the same lifecycle for tasks pulled from a taskqueue.Queue,
// dispatching every action into a store. A rejected fetch is state, so
// ProcessOne reports it through the store and not as an error.
//
// # Configuration
//
// Config controls per-task behavior:
//
//   - Timeout bounds each fetch attempt
//   - MaxAttempts and Backoff retry a failing fetch before rejecting
//
// Retries happen between the perform and the final action, so the store
// sees one perform and one settlement per task no matter how many attempts
// were made.
//
// Most applications use asyncvalue.LocalRunner, which wires a store, an
// in-memory queue and a pool of workers together.
package worker

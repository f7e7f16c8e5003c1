// Package engine implements the command store: a state tree that changes
// only through dispatched commands.
//
// Two kinds of work go through a Store:
//
//   - Plain commands (Command) are folded into the state by the root Reducer
//     under a mutex. Listeners are notified after every reduction, in the
//     order the reductions happened.
//   - Thunks run multi-step operations outside the lock. A thunk receives the
//     store as a Dispatcher and usually brackets its work with *_REQUEST and
//     *_SUCCESS or *_FAILURE commands. Thunks are not atomic with respect to
//     each other; only individual commands are.
//
// There is no process-wide store. The caller constructs one with New and
// owns its lifetime.
package engine

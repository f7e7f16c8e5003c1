// Package actions holds the thunks run through the command store: saving and
// exporting projects, and generating tools and agents.
//
// Each thunk brackets its work with *_REQUEST and *_SUCCESS or *_FAILURE
// commands. Two failure shapes exist and callers rely on both:
//
//   - Status failures (a save or export that reports status "error") are
//     recorded in state and returned as a normal result with a nil error.
//   - Call failures (a collaborator returning an error) are recorded in state
//     and then returned as *engine.DispatchError.
package actions

// Package store is the SQLite persistence engine for project documents.
//
// A project document is decomposed into fourteen normalized tables
// (see schema.sql). Two write paths exist:
//
//   - CreateProject: insert-only. Never checks name uniqueness.
//   - SaveProject: upsert by name, then delete and re-insert every child
//     collection of the project.
//
// Both paths run in exactly one transaction and never return an error past
// their boundary: the outcome is a Result with status "success" or "error".
// A failure at any row rolls back the whole attempt, including the deletions
// a save performed before the failing insert.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Cascading deletes from projects and owning rows
//   - Bounded pool (default one connection): SQLite has a single writer
//
// Structured values (model parameters, agent tool parameters, protocol
// message types, non-string parameter defaults) are stored as canonical JSON
// produced by ldl.EncodeValue, so reads are lossless.
package store

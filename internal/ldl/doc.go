// Package ldl defines the Lumos Definition Language project document.
//
// A project document describes a multi-agent application: agents with their
// models and capabilities, project-scoped tools and tasks, interactions
// between agents, and the connections drawn between canvas nodes.
//
// This package contains the document types and their encodings only. The
// store, engine, and cli packages import ldl; ldl imports nothing internal.
//
// Key design constraints:
//   - Parameter values are a sealed tagged variant (Value). The variant is
//     chosen when the document is decoded, never inferred during persistence.
//   - Structured values are stored as canonical JSON (sorted keys, strings
//     kept byte for byte) so they round-trip losslessly through text columns.
//     Only Document.Hash normalizes strings to NFC.
//   - JSON tags follow the camelCase field names used by the canvas frontend.
package ldl

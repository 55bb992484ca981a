// Package state persists per-workspace key/value data.
//
// Each repository gets its own workspace, identified by a hash of its root
// path. A workspace is an opaque durable map from key to JSON value; callers
// (the branch memory store) decide what the keys mean.
//
// Key concepts:
//   - Store: Get/Put/Delete of JSON values by key
//   - FileStore: one JSON document per workspace, replaced atomically on write
//   - SQLiteStore: one SQLite database per workspace with an upserted kv table
//   - WorkspaceID: stable identifier derived from the repository root
package state

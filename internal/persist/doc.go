// Package persist keeps state components alive across sessions.
//
// # Purpose
//
// Editor state that belongs to a view (the selection, the viewport, which
// blackboard sections are folded, the graph shown in the view) should survive
// a restart. The Cache maps a Key to a component instance and round-trips it
// through a Backend at well-defined checkpoints: when the shown graph changes
// and when the application closes.
//
// # Layout
//
// Every key hashes to a content-addressed path:
//
//	<first two hex chars>/<sha256 hex>.json
//
// The two-character directory bounds the fan-out of the cache root. A small
// index file maps each view id to the paths written for it, so RemoveState can
// delete a closed view's files without scanning the whole cache.
//
// # Failure model
//
// Persistence is best effort. Unreadable or corrupt entries are logged,
// deleted and replaced by a fresh default; they never surface as errors from
// GetOrCreate. Flush reports write failures to the caller.
//
// # Backends
//
//   - FileBackend stores each path as a file under a root directory.
//   - SQLiteBackend stores each path as a row in a single table.
//   - MemoryBackend keeps everything in a sync.Map and is used by tests and
//     by sessions that should not touch the disk.
package persist

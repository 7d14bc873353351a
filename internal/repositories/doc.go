// Package repositories implements SQLite persistence for generation history.
//
// [RunRepository] stores each generate-and-resolve call as a run with one row per candidate,
// supports soft deletes via deleted_at timestamps and excludes deleted runs from queries by default.
// [RunRecorderAdapter] plugs the repository into the task engine.
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

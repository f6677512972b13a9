// Package repositories implements SQLite persistence for the album collection.
//
// [AlbumRepository] handles CRUD operations with atomic sequence generation for human-readable ordering.
// It supports soft deletes via deleted_at timestamps and excludes deleted records from queries by default.
//
// Collection refreshes go through [AlbumRepository.ReplaceAll], which swaps the cached set
// in a single transaction so a failed match run never leaves a half-replaced collection behind.
//
// Sequence numbers provide stable, human-readable ordering (e.g., album #42) independent of UUIDs
// and creation timestamps. The [NextSequence] function atomically increments per-table sequence
// counters in dedicated sequence tables.
package repositories

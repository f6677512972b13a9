// Package tasks orchestrates review matching and favorite synchronization with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] exposes two operations:
//
//  1. [Engine.MatchReviews] (and [Engine.FetchAndMatch]) : review → album resolution
//     - Searches the catalog with artist + title, at most one result per record
//     - Fetches the full album record and attaches the review
//     - Skips unresolved records and keeps going; rate limited via x/time
//
//  2. [Engine.ToggleFavorite] : the favorite state machine
//     - Optimistically flips the local flag, then drives the remote sequence
//     - Favoriting: library add → artist follows → most-popular-track
//       selection (concurrent fan-out, first-max tie-break) → yearly playlist
//       upsert → track insertion
//     - Unfavoriting: library remove only
//     - Any remote failure reverts the local flag and returns a [SyncError];
//       committed remote side effects stay (no compensation)
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
